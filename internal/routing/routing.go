// Package routing maps (path, method) pairs to connection handlers.
package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/danmuck/edgeconn/internal/connection"
)

// MethodWebSocket is the method key websocket sessions are routed under.
const MethodWebSocket = "WEBSOCKET"

var (
	ErrNoRoute          = errors.New("routing: no route")
	ErrMethodNotAllowed = errors.New("routing: method not allowed")
	ErrDuplicateRoute   = errors.New("routing: duplicate route")
)

// Handler serves one connection for the lifetime of the session.
type Handler func(ctx context.Context, conn connection.Connection) error

// Route binds handlers to a single exact path.
type Route struct {
	Path     string
	handlers map[string]Handler
}

func NewRoute(path string) *Route {
	return &Route{Path: path, handlers: make(map[string]Handler)}
}

// Handle registers h for method, replacing any earlier handler.
func (r *Route) Handle(method string, h Handler) *Route {
	r.handlers[method] = h
	return r
}

func (r *Route) GET(h Handler) *Route       { return r.Handle(http.MethodGet, h) }
func (r *Route) POST(h Handler) *Route      { return r.Handle(http.MethodPost, h) }
func (r *Route) PUT(h Handler) *Route       { return r.Handle(http.MethodPut, h) }
func (r *Route) PATCH(h Handler) *Route     { return r.Handle(http.MethodPatch, h) }
func (r *Route) DELETE(h Handler) *Route    { return r.Handle(http.MethodDelete, h) }
func (r *Route) WebSocket(h Handler) *Route { return r.Handle(MethodWebSocket, h) }

// Methods lists the methods this route serves, sorted.
func (r *Route) Methods() []string {
	out := make([]string, 0, len(r.handlers))
	for m := range r.handlers {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Router is a table of routes keyed by path.
type Router struct {
	routes map[string]*Route
}

func NewRouter(routes ...*Route) (*Router, error) {
	r := &Router{routes: make(map[string]*Route)}
	if err := r.Add(routes...); err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers routes. A duplicate path, either already registered or
// repeated within routes, rejects the whole batch.
func (r *Router) Add(routes ...*Route) error {
	seen := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		_, registered := r.routes[route.Path]
		_, repeated := seen[route.Path]
		if registered || repeated {
			return fmt.Errorf("%w: %s", ErrDuplicateRoute, route.Path)
		}
		seen[route.Path] = struct{}{}
	}
	for _, route := range routes {
		r.routes[route.Path] = route
	}
	return nil
}

// Lookup finds the handler for path and method.
func (r *Router) Lookup(path, method string) (Handler, error) {
	route, ok := r.routes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, path)
	}
	h, ok := route.handlers[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, method, path)
	}
	return h, nil
}

// Paths lists registered paths, sorted.
func (r *Router) Paths() []string {
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
