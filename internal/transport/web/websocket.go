package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/gorilla/websocket"
)

var ErrNotAccepted = errors.New("web: websocket not accepted")

// wsExchange adapts a pending websocket upgrade to the raw channel. The
// upgrade happens when the application sends websocket.accept.
type wsExchange struct {
	r        *http.Request
	w        http.ResponseWriter
	id       string
	upgrader websocket.Upgrader
	cfg      Config

	conn          *websocket.Conn
	connectSent   bool
	closed        bool
	rejectedEarly bool
	accepted      chan struct{}
	done          chan struct{}
	// writeControl defaults to conn.WriteControl once accepted.
	writeControl func(messageType int, data []byte, deadline time.Time) error
	inbound       chan protocol.Message
}

func newWSExchange(w http.ResponseWriter, r *http.Request, id string, cfg Config) *wsExchange {
	return &wsExchange{
		r:   r,
		w:   w,
		id:  id,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			CheckOrigin:      originChecker(cfg.AllowedOrigins),
		},
		accepted: make(chan struct{}),
		done:     make(chan struct{}),
		inbound:  make(chan protocol.Message, 16),
	}
}

func (e *wsExchange) receive(ctx context.Context) (protocol.Message, error) {
	if !e.connectSent {
		e.connectSent = true
		return protocol.Message{"type": "websocket.connect"}, nil
	}
	if e.conn == nil {
		select {
		case <-e.accepted:
		case <-e.done:
			return disconnect(websocket.CloseNormalClosure), nil
		case <-e.r.Context().Done():
			return disconnect(websocket.CloseGoingAway), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	select {
	case msg, ok := <-e.inbound:
		if !ok {
			return disconnect(websocket.CloseNormalClosure), nil
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// readLoop pumps frames into inbound until the peer goes away. It ends with
// exactly one websocket.disconnect.
func (e *wsExchange) readLoop() {
	defer close(e.inbound)
	for {
		kind, data, err := e.conn.ReadMessage()
		if err != nil {
			code := websocket.CloseAbnormalClosure
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				code = ce.Code
			}
			e.push(disconnect(code))
			return
		}
		switch kind {
		case websocket.TextMessage:
			e.push(protocol.Message{"type": "websocket.receive", "text": string(data)})
		case websocket.BinaryMessage:
			e.push(protocol.Message{"type": "websocket.receive", "bytes": data})
		}
	}
}

func (e *wsExchange) push(msg protocol.Message) {
	select {
	case e.inbound <- msg:
	case <-e.done:
	}
}

func (e *wsExchange) send(ctx context.Context, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch msg.Type() {
	case "websocket.accept":
		return e.accept(msg)
	case "websocket.send":
		if e.conn == nil {
			return ErrNotAccepted
		}
		if b, ok := msg["bytes"].([]byte); ok {
			return e.conn.WriteMessage(websocket.BinaryMessage, b)
		}
		return e.conn.WriteMessage(websocket.TextMessage, []byte(msg.String("text")))
	case "websocket.close":
		code, ok := msg.Int("code")
		if !ok {
			code = websocket.CloseNormalClosure
		}
		return e.close(code, msg.String("reason"))
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMessage, msg.Type())
	}
}

func (e *wsExchange) accept(msg protocol.Message) error {
	header := http.Header{}
	for _, h := range msg.Headers() {
		header.Add(string(h[0]), string(h[1]))
	}
	if sub := msg.String("subprotocol"); sub != "" {
		header.Set("Sec-WebSocket-Protocol", sub)
	}
	header.Set("X-Request-Id", e.id)
	conn, err := e.upgrader.Upgrade(e.w, e.r, header)
	if err != nil {
		e.rejectedEarly = true
		e.finish()
		return fmt.Errorf("websocket upgrade: %w", err)
	}
	e.conn = conn
	if e.writeControl == nil {
		e.writeControl = conn.WriteControl
	}
	close(e.accepted)
	go e.readLoop()
	return nil
}

// close sends a close frame, or rejects the handshake with 403 when the
// session was never accepted.
func (e *wsExchange) close(code int, reason string) error {
	if e.closed {
		return nil
	}
	if e.conn == nil {
		e.rejectedEarly = true
		http.Error(e.w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		e.closed = true
		e.finish()
		return nil
	}
	deadline := time.Now().Add(e.cfg.CloseTimeout)
	err := e.writeControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	e.closed = true
	return nil
}

// finish releases the exchange once the application returns.
func (e *wsExchange) finish() {
	select {
	case <-e.done:
		return
	default:
		close(e.done)
	}
	if e.conn != nil {
		_ = e.conn.Close()
		return
	}
	if !e.rejectedEarly {
		e.rejectedEarly = true
		http.Error(e.w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	}
}

func disconnect(code int) protocol.Message {
	return protocol.Message{"type": "websocket.disconnect", "code": code}
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := strings.ToLower(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
