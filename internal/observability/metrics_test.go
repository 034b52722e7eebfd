package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danmuck/edgeconn/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("edge-a", "GET", "/health", 200, 12*time.Millisecond)
	RecordConnectionOpened("http")
	RecordConnectionClosed("http", "ok", 5*time.Millisecond)
	RecordConnectionError("websocket", "invalid_state")

	before := testutil.ToFloat64(messagesTotal.WithLabelValues("http.request", DirectionInbound))
	RecordMessage("http.request", DirectionInbound)
	after := testutil.ToFloat64(messagesTotal.WithLabelValues("http.request", DirectionInbound))
	if after != before+1 {
		t.Fatalf("unexpected message counter: before=%v after=%v", before, after)
	}
}

func TestRequestMetricsMiddleware(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(log.Logger))
	r.Use(RequestMetricsMiddleware("edge-test"))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("edge-test", "GET", "/ping", "200"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("edge-test", "GET", "/ping", "200"))
	if after != before+1 {
		t.Fatalf("unexpected request counter: before=%v after=%v", before, after)
	}
}

func TestRequestLoggerFields(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)))
	r.NoRoute(func(c *gin.Context) {
		c.Header(RequestIDHeader, "req-1")
		c.Status(http.StatusForbidden)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Upgrade", "websocket")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unexpected log output %q: %v", buf.String(), err)
	}
	if line["protocol"] != "websocket" || line["path"] != "/ws" || line["request_id"] != "req-1" {
		t.Fatalf("unexpected log fields: %+v", line)
	}
	if line["level"] != "warn" || line["status"] != float64(http.StatusForbidden) {
		t.Fatalf("unexpected level/status: %+v", line)
	}

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("unexpected log output %q: %v", buf.String(), err)
	}
	if line["protocol"] != "http" {
		t.Fatalf("unexpected protocol: %+v", line)
	}
}
