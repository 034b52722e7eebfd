package connection

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/protocol/response"
	"github.com/danmuck/edgeconn/internal/testutil/testlog"
	"github.com/danmuck/edgeconn/internal/transport/memory"
)

func chunk(body string, more bool) protocol.Message {
	return protocol.Message{"type": "http.request", "body": []byte(body), "more_body": more}
}

func TestHTTPMethod(t *testing.T) {
	testlog.Start(t)
	if got := NewHTTP(httpScope(), nil, nil).Method(); got != "GET" {
		t.Fatalf("unexpected method: %q", got)
	}
}

func TestHTTPReceiveRequestStripsType(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(2)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ch.Push(chunk("hello", false))

	req, err := c.ReceiveRequest(context.Background())
	if err != nil {
		t.Fatalf("receive request: %v", err)
	}
	if req.Protocol != "http" || req.Type != "request" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if _, ok := req.Data["type"]; ok {
		t.Fatalf("type not stripped: %+v", req.Data)
	}
	if string(req.Body()) != "hello" || req.MoreBody() {
		t.Fatalf("unexpected data: %+v", req.Data)
	}
}

func TestHTTPReceiveRequestTypeMismatch(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(2)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ch.Push(protocol.Message{"type": "http.disconnect"})
	if _, err := c.ReceiveRequest(context.Background()); !errors.Is(err, protocol.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestHTTPStreamRequestsStopsAfterFinalChunk(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(8)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ch.Push(chunk("a", true), chunk("b", true), chunk("c", false), chunk("next", false))

	var bodies []string
	for req, err := range c.StreamRequests(context.Background()) {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		bodies = append(bodies, string(req.Body()))
	}
	if !reflect.DeepEqual(bodies, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected bodies: %v", bodies)
	}
	if ch.Receives() != 3 {
		t.Fatalf("stream read past the final chunk: receives=%d", ch.Receives())
	}
}

func TestHTTPStreamRequestsYieldsError(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(4)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ch.Push(chunk("a", true), protocol.Message{"type": "http.disconnect"})

	var errs int
	var count int
	for _, err := range c.StreamRequests(context.Background()) {
		count++
		if err != nil {
			errs++
			if !errors.Is(err, protocol.ErrTypeMismatch) {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}
	if count != 2 || errs != 1 {
		t.Fatalf("unexpected count=%d errs=%d", count, errs)
	}
}

func TestHTTPRequestBodyConcatenates(t *testing.T) {
	testlog.Start(t)
	for n := 1; n <= 4; n++ {
		ch := memory.New(8)
		c := NewHTTP(httpScope(), ch.Receive, ch.Send)
		want := ""
		for i := 0; i < n; i++ {
			part := string(rune('a'+i)) + "-"
			want += part
			ch.Push(chunk(part, i < n-1))
		}

		req, err := c.RequestBody(context.Background())
		if err != nil {
			t.Fatalf("n=%d: request body: %v", n, err)
		}
		if req.Protocol != "http" || req.Type != "request" {
			t.Fatalf("n=%d: unexpected request: %+v", n, req)
		}
		if string(req.Body()) != want || req.MoreBody() {
			t.Fatalf("n=%d: unexpected body %q (want %q)", n, req.Body(), want)
		}
	}
}

func TestHTTPRequestBodyEmptyTerminator(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(4)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ch.Push(chunk("Hello ", true), chunk("World!", true), chunk("", false))
	req, err := c.RequestBody(context.Background())
	if err != nil {
		t.Fatalf("request body: %v", err)
	}
	if string(req.Body()) != "Hello World!" {
		t.Fatalf("unexpected body: %q", req.Body())
	}
}

func TestHTTPSendResponse(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(4)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	resp := response.NewStream(201, nil, response.ChunksOf([]byte("x")))
	if err := c.SendResponse(context.Background(), resp); err != nil {
		t.Fatalf("send response: %v", err)
	}
	sent := ch.Sent()
	if len(sent) != 3 {
		t.Fatalf("unexpected sent: %+v", sent)
	}
	if sent[0].Type() != "http.response.start" || sent[2].Bool("more_body") {
		t.Fatalf("unexpected order: %+v", sent)
	}
}

func TestHTTPSendResponseRejectsForeignMessages(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(4)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	err := c.SendResponse(context.Background(), response.Accept{})
	if !errors.Is(err, protocol.ErrProtocolMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if len(ch.Sent()) != 0 {
		t.Fatalf("unexpected sent: %+v", ch.Sent())
	}
}
