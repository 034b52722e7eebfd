package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	DirectionInbound  = "in"
	DirectionOutbound = "out"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgeconn",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgeconn",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	connectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgeconn",
			Subsystem: "connection",
			Name:      "opened_total",
			Help:      "Connections opened by protocol.",
		},
		[]string{"protocol"},
	)
	connectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "edgeconn",
			Subsystem: "connection",
			Name:      "duration_seconds",
			Help:      "Connection lifetime in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"protocol", "outcome"},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgeconn",
			Subsystem: "wire",
			Name:      "messages_total",
			Help:      "Wire messages by type and direction.",
		},
		[]string{"type", "direction"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "edgeconn",
			Subsystem: "connection",
			Name:      "errors_total",
			Help:      "Connection errors by kind.",
		},
		[]string{"protocol", "kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			connectionsTotal,
			connectionDuration,
			messagesTotal,
			protocolErrors,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordConnectionOpened(protocol string) {
	RegisterMetrics()
	connectionsTotal.WithLabelValues(protocol).Inc()
}

func RecordConnectionClosed(protocol, outcome string, duration time.Duration) {
	RegisterMetrics()
	connectionDuration.WithLabelValues(protocol, outcome).Observe(duration.Seconds())
}

func RecordMessage(msgType, direction string) {
	RegisterMetrics()
	messagesTotal.WithLabelValues(msgType, direction).Inc()
}

func RecordConnectionError(protocol, kind string) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(protocol, kind).Inc()
}
