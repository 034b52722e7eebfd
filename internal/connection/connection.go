package connection

import (
	"context"
	"fmt"

	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/protocol/response"
)

// ReceiveFunc blocks until the raw channel delivers the next message.
type ReceiveFunc func(ctx context.Context) (protocol.Message, error)

// SendFunc blocks until the raw channel accepts msg.
type SendFunc func(ctx context.Context, msg protocol.Message) error

// URL is the address information projected out of a scope.
type URL struct {
	Scheme      string
	Server      string
	RootPath    string
	Path        string
	QueryString string
}

// Connection is a client session bound to one protocol.
type Connection interface {
	Protocol() string
	Scope() protocol.Scope
	Headers() map[string]string
	URL() URL
	Receive(ctx context.Context) (protocol.Message, error)
	Send(ctx context.Context, msg protocol.Message) error
	ReceiveRequest(ctx context.Context) (protocol.Request, error)
	SendResponse(ctx context.Context, resp response.Response) error
}

// conn carries the channel plumbing shared by every concrete connection.
type conn struct {
	protocol string
	scope    protocol.Scope
	receive  ReceiveFunc
	send     SendFunc
}

func newConn(name string, scope protocol.Scope, receive ReceiveFunc, send SendFunc) conn {
	return conn{protocol: name, scope: scope, receive: receive, send: send}
}

func (c *conn) Protocol() string {
	return c.protocol
}

func (c *conn) Scope() protocol.Scope {
	return c.scope
}

// Headers decodes the scope's raw header pairs as Latin-1. Later duplicates
// overwrite earlier ones.
func (c *conn) Headers() map[string]string {
	raw := c.scope.Headers()
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		out[latin1(h[0])] = latin1(h[1])
	}
	return out
}

func (c *conn) URL() URL {
	return URL{
		Scheme:      c.scope.String("scheme"),
		Server:      serverString(c.scope["server"]),
		RootPath:    c.scope.String("root_path"),
		Path:        c.scope.String("path"),
		QueryString: queryString(c.scope["query_string"]),
	}
}

// Receive returns the next raw message, rejecting any that belongs to a
// different protocol.
func (c *conn) Receive(ctx context.Context) (protocol.Message, error) {
	msg, err := c.receive(ctx)
	if err != nil {
		return nil, err
	}
	if got := msg.Protocol(); got != c.protocol {
		return nil, fmt.Errorf("%w: received %q on a %s connection", protocol.ErrProtocolMismatch, got, c.protocol)
	}
	return msg, nil
}

// Send forwards msg to the raw channel if it belongs to this protocol.
func (c *conn) Send(ctx context.Context, msg protocol.Message) error {
	if got := msg.Protocol(); got != c.protocol {
		return fmt.Errorf("%w: cannot send %q on a %s connection", protocol.ErrProtocolMismatch, got, c.protocol)
	}
	return c.send(ctx, msg)
}

func latin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

func serverString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []any:
		if len(s) == 2 {
			return fmt.Sprintf("%v:%v", s[0], s[1])
		}
	}
	return ""
}

func queryString(v any) string {
	switch q := v.(type) {
	case string:
		return q
	case []byte:
		return latin1(q)
	}
	return ""
}
