package connection

import (
	"fmt"

	"github.com/danmuck/edgeconn/internal/protocol"
)

// Factory builds a connection for one protocol.
type Factory func(scope protocol.Scope, receive ReceiveFunc, send SendFunc) Connection

var protocols = map[string]Factory{
	protocol.ProtocolHTTP: func(s protocol.Scope, r ReceiveFunc, w SendFunc) Connection {
		return NewHTTP(s, r, w)
	},
	protocol.ProtocolWebSocket: func(s protocol.Scope, r ReceiveFunc, w SendFunc) Connection {
		return NewWebSocket(s, r, w)
	},
}

// New builds the connection registered for the scope's declared protocol.
func New(scope protocol.Scope, receive ReceiveFunc, send SendFunc) (Connection, error) {
	factory, ok := protocols[scope.Type()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", protocol.ErrProtocolUnknown, scope.Type())
	}
	return factory(scope, receive, send), nil
}

// Protocols lists the registered protocol names.
func Protocols() []string {
	out := make([]string, 0, len(protocols))
	for name := range protocols {
		out = append(out, name)
	}
	return out
}
