package protocol

import "errors"

var (
	ErrProtocolUnknown        = errors.New("protocol: unknown protocol")
	ErrProtocolMismatch       = errors.New("protocol: protocol mismatch")
	ErrTypeMismatch           = errors.New("protocol: message type mismatch")
	ErrInvalidConnectionState = errors.New("protocol: invalid connection state")
)
