package observability

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request id assigned by the transport.
const RequestIDHeader = "X-Request-Id"

// RequestLogger logs one line per request once the connection has been
// served. Websocket sessions are logged when the session ends.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		event.
			Str("protocol", connectionProtocol(c)).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Int("status", status).
			Str("request_id", c.Writer.Header().Get(RequestIDHeader)).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int("bytes", c.Writer.Size()).
			Msg("connection served")
	}
}

func RequestMetricsMiddleware(node string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(node, c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start))
	}
}

// routePath prefers the matched gin route and falls back to the raw path for
// requests served by the connection handler.
func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}

// connectionProtocol names the protocol a request is served under.
func connectionProtocol(c *gin.Context) string {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return "websocket"
	}
	return "http"
}
