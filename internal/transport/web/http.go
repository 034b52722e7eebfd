package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/danmuck/edgeconn/internal/observability"
	"github.com/danmuck/edgeconn/internal/protocol"
)

var (
	ErrResponseStarted    = errors.New("web: response already started")
	ErrResponseNotStarted = errors.New("web: response not started")
	ErrResponseComplete   = errors.New("web: response already complete")
	ErrUnsupportedMessage = errors.New("web: unsupported message")
)

// httpExchange adapts one request/ResponseWriter pair to the raw channel.
type httpExchange struct {
	r     *http.Request
	w     http.ResponseWriter
	id    string
	chunk int

	bodyDone  bool
	started   bool
	complete  bool
	responded chan struct{}
}

func newHTTPExchange(w http.ResponseWriter, r *http.Request, id string, cfg Config) *httpExchange {
	return &httpExchange{
		r:         r,
		w:         w,
		id:        id,
		chunk:     cfg.BodyChunkSize,
		responded: make(chan struct{}),
	}
}

// receive yields the body as http.request chunks, then http.disconnect once
// the response is complete or the client goes away.
func (e *httpExchange) receive(ctx context.Context) (protocol.Message, error) {
	if !e.bodyDone {
		return e.readChunk()
	}
	select {
	case <-e.responded:
	case <-e.r.Context().Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return protocol.Message{"type": "http.disconnect"}, nil
}

func (e *httpExchange) readChunk() (protocol.Message, error) {
	if e.r.Body == nil || e.r.Body == http.NoBody {
		e.bodyDone = true
		return protocol.Message{"type": "http.request", "body": []byte{}, "more_body": false}, nil
	}
	buf := make([]byte, e.chunk)
	n, err := io.ReadFull(e.r.Body, buf)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		e.bodyDone = true
	default:
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return protocol.Message{"type": "http.request", "body": buf[:n], "more_body": !e.bodyDone}, nil
}

func (e *httpExchange) send(ctx context.Context, msg protocol.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.complete {
		return ErrResponseComplete
	}
	switch msg.Type() {
	case "http.response.start":
		if e.started {
			return ErrResponseStarted
		}
		status, ok := msg.Int("status")
		if !ok || status == 0 {
			status = http.StatusOK
		}
		header := e.w.Header()
		for _, h := range msg.Headers() {
			header.Add(string(h[0]), string(h[1]))
		}
		header.Set(observability.RequestIDHeader, e.id)
		e.w.WriteHeader(status)
		e.started = true
		return nil
	case "http.response.body":
		if !e.started {
			return ErrResponseNotStarted
		}
		if body := msg.Bytes("body"); len(body) > 0 {
			if _, err := e.w.Write(body); err != nil {
				return err
			}
		}
		if f, ok := e.w.(http.Flusher); ok {
			f.Flush()
		}
		if !msg.Bool("more_body") {
			e.complete = true
			close(e.responded)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMessage, msg.Type())
	}
}
