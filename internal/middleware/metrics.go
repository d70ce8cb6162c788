package middleware

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of currently active HTTP requests",
		},
	)

	dbPool = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_pool_connections",
			Help: "Database pool connections by state",
		},
		[]string{"state"}, // in_use, idle, open
	)

	dbPoolWaits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_pool_wait_count",
			Help: "Total number of connections waited for",
		},
	)
)

// unmeasured paths never reach the request metrics. The websocket stream is
// long lived and would swamp the duration histogram.
var unmeasured = map[string]bool{
	"/metrics":          true,
	"/health":           true,
	"/ws/notifications": true,
}

// Metrics returns a gin middleware that collects Prometheus metrics
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if unmeasured[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		activeRequests.Inc()
		defer activeRequests.Dec()

		c.Next()

		path := normalizePath(c.FullPath())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordDBStats publishes a snapshot of the database pool
func RecordDBStats(stats sql.DBStats) {
	dbPool.WithLabelValues("in_use").Set(float64(stats.InUse))
	dbPool.WithLabelValues("idle").Set(float64(stats.Idle))
	dbPool.WithLabelValues("open").Set(float64(stats.OpenConnections))
	dbPoolWaits.Set(float64(stats.WaitCount))
}

// normalizePath maps unmatched routes to a single label so 404 scans do
// not grow the label set
func normalizePath(path string) string {
	if path == "" {
		return "unmatched"
	}
	return path
}
