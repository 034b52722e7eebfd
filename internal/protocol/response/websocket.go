package response

import (
	"iter"

	"github.com/danmuck/edgeconn/internal/protocol"
)

// CloseNormal is the websocket close code used when none is given.
const CloseNormal = 1000

// Accept completes the websocket handshake.
type Accept struct {
	Subprotocol string
	Headers     []protocol.HeaderPair
}

func (a Accept) Messages() iter.Seq[protocol.Message] {
	return single(func() protocol.Message {
		msg := protocol.Message{"type": "websocket.accept"}
		if a.Subprotocol != "" {
			msg["subprotocol"] = a.Subprotocol
		}
		if len(a.Headers) > 0 {
			msg["headers"] = a.Headers
		}
		return msg
	})
}

// Send carries one data frame. Bytes wins when both payloads are set.
type Send struct {
	Bytes []byte
	Text  string
}

// SendText returns a text frame response.
func SendText(text string) Send {
	return Send{Text: text}
}

// SendBytes returns a binary frame response.
func SendBytes(b []byte) Send {
	return Send{Bytes: b}
}

func (s Send) Messages() iter.Seq[protocol.Message] {
	return single(func() protocol.Message {
		msg := protocol.Message{"type": "websocket.send"}
		if s.Bytes != nil {
			msg["bytes"] = s.Bytes
		} else {
			msg["text"] = s.Text
		}
		return msg
	})
}

// Close ends the session, or rejects it when sent before Accept.
type Close struct {
	Code   int
	Reason string
}

func (c Close) Messages() iter.Seq[protocol.Message] {
	return single(func() protocol.Message {
		code := c.Code
		if code == 0 {
			code = CloseNormal
		}
		msg := protocol.Message{"type": "websocket.close", "code": code}
		if c.Reason != "" {
			msg["reason"] = c.Reason
		}
		return msg
	})
}

func single(build func() protocol.Message) iter.Seq[protocol.Message] {
	return func(yield func(protocol.Message) bool) {
		yield(build())
	}
}
