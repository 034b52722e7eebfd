package connection

import (
	"bytes"
	"context"
	"fmt"
	"iter"

	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/protocol/response"
)

const httpRequestType = "request"

// HTTPConnection is a request/response connection. It carries no state
// between calls; every inbound message must be an http.request.
type HTTPConnection struct {
	conn
}

var _ Connection = (*HTTPConnection)(nil)

func NewHTTP(scope protocol.Scope, receive ReceiveFunc, send SendFunc) *HTTPConnection {
	return &HTTPConnection{conn: newConn(protocol.ProtocolHTTP, scope, receive, send)}
}

func (c *HTTPConnection) Method() string {
	return c.scope.String("method")
}

func (c *HTTPConnection) ReceiveRequest(ctx context.Context) (protocol.Request, error) {
	msg, err := c.Receive(ctx)
	if err != nil {
		return protocol.Request{}, err
	}
	name, subtype := protocol.SplitType(msg.Type())
	if subtype != httpRequestType {
		return protocol.Request{}, fmt.Errorf("%w: got %q, expected %q", protocol.ErrTypeMismatch, subtype, httpRequestType)
	}
	return protocol.Request{Protocol: name, Type: subtype, Data: msg.Without("type")}, nil
}

// StreamRequests yields requests until one arrives without more_body; that
// final request is yielded too. A failed receive is yielded once and ends the
// sequence. The sequence owns the receive side of the channel while it runs.
func (c *HTTPConnection) StreamRequests(ctx context.Context) iter.Seq2[protocol.Request, error] {
	return func(yield func(protocol.Request, error) bool) {
		for {
			req, err := c.ReceiveRequest(ctx)
			if err != nil {
				yield(protocol.Request{}, err)
				return
			}
			if !yield(req, nil) || !req.MoreBody() {
				return
			}
		}
	}
}

// RequestBody drains StreamRequests and returns one request holding the
// concatenated body in arrival order.
func (c *HTTPConnection) RequestBody(ctx context.Context) (protocol.Request, error) {
	var body bytes.Buffer
	for req, err := range c.StreamRequests(ctx) {
		if err != nil {
			return protocol.Request{}, err
		}
		body.Write(req.Body())
	}
	return protocol.Request{
		Protocol: c.protocol,
		Type:     httpRequestType,
		Data:     protocol.Message{"body": body.Bytes(), "more_body": false},
	}, nil
}

func (c *HTTPConnection) SendResponse(ctx context.Context, resp response.Response) error {
	for msg := range resp.Messages() {
		if err := c.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}
