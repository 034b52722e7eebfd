package web

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/danmuck/edgeconn/internal/observability"
	"github.com/danmuck/edgeconn/internal/protocol"
	"github.com/google/uuid"
)

// requestID returns the inbound X-Request-Id or a fresh uuid.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(observability.RequestIDHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}

// isWebSocket reports whether r asks for a websocket upgrade.
func isWebSocket(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		headerContainsToken(r.Header, "Connection", "upgrade")
}

func headerContainsToken(h http.Header, name, token string) bool {
	for _, v := range h.Values(name) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// buildScope describes r the way connections expect. Header names are
// lowercased and kept in arrival order.
func buildScope(r *http.Request, cfg Config, id string) protocol.Scope {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	kind := protocol.ProtocolHTTP
	if isWebSocket(r) {
		kind = protocol.ProtocolWebSocket
		scheme = "ws"
		if r.TLS != nil {
			scheme = "wss"
		}
	}

	headers := make([]protocol.HeaderPair, 0, len(r.Header)+1)
	if r.Host != "" {
		headers = append(headers, protocol.Header("host", r.Host))
	}
	for name, values := range r.Header {
		lower := strings.ToLower(name)
		for _, v := range values {
			headers = append(headers, protocol.Header(lower, v))
		}
	}

	scope := protocol.Scope{
		"type":         kind,
		"http_version": strings.TrimPrefix(r.Proto, "HTTP/"),
		"method":       r.Method,
		"scheme":       scheme,
		"server":       hostPort(r.Host, defaultPort(r)),
		"client":       hostPort(r.RemoteAddr, 0),
		"root_path":    cfg.RootPath,
		"path":         r.URL.Path,
		"query_string": []byte(r.URL.RawQuery),
		"headers":      headers,
		"request_id":   id,
	}
	if kind == protocol.ProtocolWebSocket {
		scope["subprotocols"] = subprotocols(r)
	}
	return scope
}

func hostPort(addr string, fallback int) []any {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return []any{addr, fallback}
	}
	p, _ := strconv.Atoi(port)
	return []any{host, p}
}

func defaultPort(r *http.Request) int {
	if r.TLS != nil {
		return 443
	}
	return 80
}

func subprotocols(r *http.Request) []string {
	var out []string
	for _, v := range r.Header.Values("Sec-WebSocket-Protocol") {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
