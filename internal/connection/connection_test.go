package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/danmuck/edgeconn/internal/testutil/testlog"
	"github.com/danmuck/edgeconn/internal/transport/memory"
)

func httpScope() protocol.Scope {
	return protocol.Scope{
		"type":         "http",
		"method":       "GET",
		"scheme":       "http",
		"server":       "127.0.0.1",
		"root_path":    "/",
		"path":         "/",
		"query_string": "",
	}
}

func TestNewSelectsByProtocol(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(1)

	c, err := New(httpScope(), ch.Receive, ch.Send)
	if err != nil {
		t.Fatalf("new http: %v", err)
	}
	if _, ok := c.(*HTTPConnection); !ok || c.Protocol() != "http" {
		t.Fatalf("unexpected connection: %T", c)
	}

	c, err = New(protocol.Scope{"type": "websocket"}, ch.Receive, ch.Send)
	if err != nil {
		t.Fatalf("new websocket: %v", err)
	}
	if _, ok := c.(*WebSocketConnection); !ok || c.Protocol() != "websocket" {
		t.Fatalf("unexpected connection: %T", c)
	}

	if _, err := New(protocol.Scope{"type": "lifespan"}, ch.Receive, ch.Send); !errors.Is(err, protocol.ErrProtocolUnknown) {
		t.Fatalf("expected unknown protocol, got %v", err)
	}
	if _, err := New(protocol.Scope{}, ch.Receive, ch.Send); !errors.Is(err, protocol.ErrProtocolUnknown) {
		t.Fatalf("expected unknown protocol for missing type, got %v", err)
	}
	if len(Protocols()) != 2 {
		t.Fatalf("unexpected registry: %v", Protocols())
	}
}

func TestHeadersDecodeLatin1LastWins(t *testing.T) {
	testlog.Start(t)
	scope := httpScope()
	scope["headers"] = []protocol.HeaderPair{
		protocol.Header("host", "localhost:8000"),
		protocol.Header("accept", "*/*"),
		{[]byte("x-name"), []byte{0x63, 0x61, 0x66, 0xe9}},
		protocol.Header("accept", "text/plain"),
	}
	c := NewHTTP(scope, nil, nil)
	got := c.Headers()
	if len(got) != 3 {
		t.Fatalf("unexpected headers: %+v", got)
	}
	if got["accept"] != "text/plain" {
		t.Fatalf("expected last accept to win: %q", got["accept"])
	}
	if got["x-name"] != "café" {
		t.Fatalf("unexpected latin-1 decode: %q", got["x-name"])
	}
	if len(NewHTTP(protocol.Scope{"type": "http"}, nil, nil).Headers()) != 0 {
		t.Fatalf("expected empty headers")
	}
}

func TestURLProjection(t *testing.T) {
	testlog.Start(t)
	scope := httpScope()
	scope["path"] = "/items"
	scope["query_string"] = []byte("a=1")
	scope["server"] = []any{"127.0.0.1", 8000}
	got := NewHTTP(scope, nil, nil).URL()
	want := URL{Scheme: "http", Server: "127.0.0.1:8000", RootPath: "/", Path: "/items", QueryString: "a=1"}
	if got != want {
		t.Fatalf("unexpected url: %+v", got)
	}
	if (NewHTTP(protocol.Scope{"type": "http"}, nil, nil).URL() != URL{}) {
		t.Fatalf("expected empty url")
	}
}

func TestReceiveSendProtocolMismatch(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(4)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ctx := context.Background()

	ch.Push(protocol.Message{"type": "websocket.receive", "text": "x"})
	if _, err := c.Receive(ctx); !errors.Is(err, protocol.ErrProtocolMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}

	ch.Push(protocol.Message{"body": []byte("no type")})
	if _, err := c.Receive(ctx); !errors.Is(err, protocol.ErrProtocolMismatch) {
		t.Fatalf("expected mismatch for untyped message, got %v", err)
	}

	if err := c.Send(ctx, protocol.Message{"type": "websocket.send", "text": "x"}); !errors.Is(err, protocol.ErrProtocolMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if len(ch.Sent()) != 0 {
		t.Fatalf("mismatched message reached the channel: %+v", ch.Sent())
	}

	ch.Push(protocol.Message{"type": "http.request", "body": []byte("ok"), "more_body": false})
	msg, err := c.Receive(ctx)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if msg.Type() != "http.request" {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if err := c.Send(ctx, protocol.Message{"type": "http.response.start", "status": 200}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(ch.Sent()) != 1 {
		t.Fatalf("expected one sent message, got %+v", ch.Sent())
	}
}

func TestReceivePropagatesChannelError(t *testing.T) {
	testlog.Start(t)
	ch := memory.New(1)
	c := NewHTTP(httpScope(), ch.Receive, ch.Send)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.ReceiveRequest(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
