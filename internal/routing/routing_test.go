package routing

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/edgeconn/internal/connection"
	"github.com/danmuck/edgeconn/internal/testutil/testlog"
)

func noop(context.Context, connection.Connection) error { return nil }

func TestLookup(t *testing.T) {
	testlog.Start(t)
	router, err := NewRouter(
		NewRoute("/").GET(noop).POST(noop),
		NewRoute("/ws").WebSocket(noop),
	)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	if _, err := router.Lookup("/", "GET"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if _, err := router.Lookup("/ws", MethodWebSocket); err != nil {
		t.Fatalf("lookup ws: %v", err)
	}
	if _, err := router.Lookup("/missing", "GET"); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected no route, got %v", err)
	}
	if _, err := router.Lookup("/", "DELETE"); !errors.Is(err, ErrMethodNotAllowed) {
		t.Fatalf("expected method not allowed, got %v", err)
	}
	if !reflect.DeepEqual(router.Paths(), []string{"/", "/ws"}) {
		t.Fatalf("unexpected paths: %v", router.Paths())
	}
}

func TestRouteMethods(t *testing.T) {
	testlog.Start(t)
	r := NewRoute("/items").PUT(noop).PATCH(noop).DELETE(noop)
	if !reflect.DeepEqual(r.Methods(), []string{"DELETE", "PATCH", "PUT"}) {
		t.Fatalf("unexpected methods: %v", r.Methods())
	}
}

func TestDuplicateRoute(t *testing.T) {
	testlog.Start(t)
	if _, err := NewRouter(NewRoute("/a"), NewRoute("/a")); !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected duplicate, got %v", err)
	}
}

func TestAddRejectsWholeBatchOnDuplicate(t *testing.T) {
	testlog.Start(t)
	router, err := NewRouter(NewRoute("/existing").GET(noop))
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	err = router.Add(NewRoute("/a").GET(noop), NewRoute("/existing").GET(noop), NewRoute("/b").GET(noop))
	if !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	err = router.Add(NewRoute("/c").GET(noop), NewRoute("/c").POST(noop))
	if !errors.Is(err, ErrDuplicateRoute) {
		t.Fatalf("expected duplicate within batch, got %v", err)
	}
	if got := router.Paths(); !reflect.DeepEqual(got, []string{"/existing"}) {
		t.Fatalf("unexpected paths after rejected batches: %v", got)
	}
	if _, err := router.Lookup("/a", "GET"); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected /a to stay unregistered, got %v", err)
	}
}
