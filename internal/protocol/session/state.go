package session

import (
	"fmt"

	"github.com/danmuck/edgeconn/internal/protocol"
)

// State is the position of one axis of a duplex session.
type State int

const (
	Connecting State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	SubtypeConnect    = "connect"
	SubtypeReceive    = "receive"
	SubtypeDisconnect = "disconnect"

	SubtypeAccept = "accept"
	SubtypeSend   = "send"
	SubtypeClose  = "close"
)

// ClientTransition returns the client axis state after receiving a message of
// subtype from the far end. On error the returned state equals the input.
func ClientTransition(state State, subtype string) (State, error) {
	switch state {
	case Connecting:
		if subtype == SubtypeConnect {
			return Connected, nil
		}
	case Connected:
		switch subtype {
		case SubtypeReceive:
			return Connected, nil
		case SubtypeDisconnect:
			return Disconnected, nil
		}
	case Disconnected:
		return state, fmt.Errorf("%w: cannot receive from a disconnected client", protocol.ErrInvalidConnectionState)
	}
	return state, fmt.Errorf("%w: cannot receive a %q request from a %s client",
		protocol.ErrInvalidConnectionState, subtype, state)
}

// ApplicationTransition returns the application axis state after sending a
// message of subtype. On error the returned state equals the input.
func ApplicationTransition(state State, subtype string) (State, error) {
	switch state {
	case Connecting:
		switch subtype {
		case SubtypeAccept:
			return Connected, nil
		case SubtypeClose:
			return Disconnected, nil
		}
	case Connected:
		switch subtype {
		case SubtypeSend:
			return Connected, nil
		case SubtypeClose:
			return Disconnected, nil
		}
	case Disconnected:
		return state, fmt.Errorf("%w: cannot send once the application has disconnected", protocol.ErrInvalidConnectionState)
	}
	return state, fmt.Errorf("%w: cannot send a %q response while the application is %s",
		protocol.ErrInvalidConnectionState, subtype, state)
}
