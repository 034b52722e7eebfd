// Package response renders application responses into wire messages.
package response

import (
	"iter"

	"github.com/danmuck/edgeconn/internal/protocol"
)

// Response is anything that can be rendered into an ordered, finite sequence
// of wire messages. Each call to Messages starts a fresh sequence.
type Response interface {
	Messages() iter.Seq[protocol.Message]
}

// HTTP holds the fields shared by every http response variant.
type HTTP struct {
	Status  int
	Headers []protocol.HeaderPair
}

func (h HTTP) start() protocol.Message {
	status := h.Status
	if status == 0 {
		status = 200
	}
	headers := h.Headers
	if headers == nil {
		headers = []protocol.HeaderPair{}
	}
	return protocol.Message{
		"type":    "http.response.start",
		"status":  status,
		"headers": headers,
	}
}

func bodyMessage(body []byte, more bool) protocol.Message {
	if body == nil {
		body = []byte{}
	}
	return protocol.Message{
		"type":      "http.response.body",
		"body":      body,
		"more_body": more,
	}
}

// Body is a response whose whole body is known up front.
type Body struct {
	HTTP
	Body []byte
}

// NewBody returns a whole-body response.
func NewBody(status int, headers []protocol.HeaderPair, body []byte) Body {
	return Body{HTTP: HTTP{Status: status, Headers: headers}, Body: body}
}

// Text is a convenience for a plain text whole-body response.
func Text(status int, body string) Body {
	return NewBody(status, []protocol.HeaderPair{
		protocol.Header("content-type", "text/plain; charset=utf-8"),
	}, []byte(body))
}

func (b Body) Messages() iter.Seq[protocol.Message] {
	return func(yield func(protocol.Message) bool) {
		if !yield(b.start()) {
			return
		}
		yield(bodyMessage(b.Body, false))
	}
}

// Stream is a response whose body arrives as a sequence of chunks.
type Stream struct {
	HTTP
	Chunks iter.Seq[[]byte]
}

// NewStream returns a streamed response over chunks.
func NewStream(status int, headers []protocol.HeaderPair, chunks iter.Seq[[]byte]) Stream {
	return Stream{HTTP: HTTP{Status: status, Headers: headers}, Chunks: chunks}
}

// ChunksOf adapts a fixed list of chunks into a sequence.
func ChunksOf(chunks ...[]byte) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for _, c := range chunks {
			if !yield(c) {
				return
			}
		}
	}
}

func (s Stream) Messages() iter.Seq[protocol.Message] {
	return func(yield func(protocol.Message) bool) {
		if !yield(s.start()) {
			return
		}
		if s.Chunks != nil {
			for chunk := range s.Chunks {
				if !yield(bodyMessage(chunk, true)) {
					return
				}
			}
		}
		yield(bodyMessage(nil, false))
	}
}

// NotFound is sent when no route matches the requested path.
func NotFound() Body {
	return NewBody(404, nil, []byte("Not Found"))
}

// MethodNotAllowed is sent when a route matches but not for the method.
func MethodNotAllowed() Body {
	return NewBody(405, nil, []byte("Method Not Allowed"))
}

// Sequence renders several responses back to back as one.
func Sequence(parts ...Response) Response {
	return sequence(parts)
}

type sequence []Response

func (s sequence) Messages() iter.Seq[protocol.Message] {
	return func(yield func(protocol.Message) bool) {
		for _, part := range s {
			for msg := range part.Messages() {
				if !yield(msg) {
					return
				}
			}
		}
	}
}
