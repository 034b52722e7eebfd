package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/edgeconn/internal/connection"
	"github.com/danmuck/edgeconn/internal/observability"
	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/protocol/response"
	"github.com/danmuck/edgeconn/internal/routing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ClosePolicyViolation is the websocket close code sent when no handler can
// serve a session.
const ClosePolicyViolation = 1008

var ErrHandlerPanic = errors.New("app: handler panic")

// App dispatches connections to routed handlers.
type App struct {
	router *routing.Router
	logger zerolog.Logger
}

type Option func(*App)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func New(router *routing.Router, opts ...Option) *App {
	a := &App{router: router, logger: log.Logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Serve runs one connection to completion. Protocol violations while
// replying are returned; errors raised by the handler are logged only.
func (a *App) Serve(ctx context.Context, scope protocol.Scope, receive connection.ReceiveFunc, send connection.SendFunc) error {
	conn, err := connection.New(scope, countReceive(receive), countSend(send))
	if err != nil {
		observability.RecordConnectionError(scope.Type(), errorKind(err))
		return err
	}

	start := time.Now()
	outcome := "ok"
	observability.RecordConnectionOpened(conn.Protocol())
	defer func() {
		observability.RecordConnectionClosed(conn.Protocol(), outcome, time.Since(start))
	}()

	path := conn.URL().Path
	method := methodOf(conn)
	logger := a.logger.With().
		Str("protocol", conn.Protocol()).
		Str("method", method).
		Str("path", path).
		Str("request_id", scope.String("request_id")).
		Logger()

	handler, err := a.router.Lookup(path, method)
	if err != nil {
		outcome = "rejected"
		logger.Debug().Err(err).Msg("route lookup failed")
		if err := conn.SendResponse(ctx, rejection(conn, err)); err != nil {
			outcome = "error"
			observability.RecordConnectionError(conn.Protocol(), errorKind(err))
			return err
		}
		return nil
	}

	if err := run(ctx, handler, conn); err != nil {
		outcome = "error"
		observability.RecordConnectionError(conn.Protocol(), errorKind(err))
		logger.Error().Err(err).Msg("handler failed")
	}
	return nil
}

func run(ctx context.Context, h routing.Handler, conn connection.Connection) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h(ctx, conn)
}

func methodOf(conn connection.Connection) string {
	switch c := conn.(type) {
	case *connection.HTTPConnection:
		return c.Method()
	case *connection.WebSocketConnection:
		return routing.MethodWebSocket
	default:
		return ""
	}
}

func rejection(conn connection.Connection, err error) response.Response {
	if conn.Protocol() == protocol.ProtocolWebSocket {
		reason := "Not Found"
		if errors.Is(err, routing.ErrMethodNotAllowed) {
			reason = "Method Not Allowed"
		}
		return response.Close{Code: ClosePolicyViolation, Reason: reason}
	}
	if errors.Is(err, routing.ErrMethodNotAllowed) {
		return response.MethodNotAllowed()
	}
	return response.NotFound()
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, protocol.ErrProtocolUnknown):
		return "protocol_unknown"
	case errors.Is(err, protocol.ErrProtocolMismatch):
		return "protocol_mismatch"
	case errors.Is(err, protocol.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, protocol.ErrInvalidConnectionState):
		return "invalid_state"
	case errors.Is(err, ErrHandlerPanic):
		return "panic"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "handler"
	}
}

func countReceive(receive connection.ReceiveFunc) connection.ReceiveFunc {
	return func(ctx context.Context) (protocol.Message, error) {
		msg, err := receive(ctx)
		if err == nil {
			observability.RecordMessage(msg.Type(), observability.DirectionInbound)
		}
		return msg, err
	}
}

func countSend(send connection.SendFunc) connection.SendFunc {
	return func(ctx context.Context, msg protocol.Message) error {
		if err := send(ctx, msg); err != nil {
			return err
		}
		observability.RecordMessage(msg.Type(), observability.DirectionOutbound)
		return nil
	}
}
