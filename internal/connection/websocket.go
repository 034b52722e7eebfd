package connection

import (
	"context"
	"fmt"

	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/protocol/response"
	"github.com/danmuck/edgeconn/internal/protocol/session"
)

// WebSocketConnection is a duplex session. The client axis tracks what may
// be received and the application axis what may be sent; both start
// connecting and move independently.
type WebSocketConnection struct {
	conn
	client      session.State
	application session.State
}

var _ Connection = (*WebSocketConnection)(nil)

func NewWebSocket(scope protocol.Scope, receive ReceiveFunc, send SendFunc) *WebSocketConnection {
	return &WebSocketConnection{
		conn:        newConn(protocol.ProtocolWebSocket, scope, receive, send),
		client:      session.Connecting,
		application: session.Connecting,
	}
}

func (c *WebSocketConnection) ClientState() session.State {
	return c.client
}

func (c *WebSocketConnection) ApplicationState() session.State {
	return c.application
}

func (c *WebSocketConnection) ReceiveRequest(ctx context.Context) (protocol.Request, error) {
	if c.client == session.Disconnected {
		return protocol.Request{}, fmt.Errorf("%w: cannot receive from a disconnected client", protocol.ErrInvalidConnectionState)
	}
	msg, err := c.Receive(ctx)
	if err != nil {
		return protocol.Request{}, err
	}
	name, subtype := protocol.SplitType(msg.Type())
	next, err := session.ClientTransition(c.client, subtype)
	if err != nil {
		return protocol.Request{}, err
	}
	c.client = next
	return protocol.Request{Protocol: name, Type: subtype, Data: msg.Without("type")}, nil
}

// SendResponse validates each rendered message against the application axis
// before forwarding it. Messages already sent stay sent when a later one is
// rejected. Rendering anything after a close is a caller error and fails.
func (c *WebSocketConnection) SendResponse(ctx context.Context, resp response.Response) error {
	if c.application == session.Disconnected {
		return fmt.Errorf("%w: cannot send once the application has disconnected", protocol.ErrInvalidConnectionState)
	}
	for msg := range resp.Messages() {
		next, err := session.ApplicationTransition(c.application, msg.Subtype())
		if err != nil {
			return err
		}
		if err := c.Send(ctx, msg); err != nil {
			return err
		}
		c.application = next
	}
	return nil
}
