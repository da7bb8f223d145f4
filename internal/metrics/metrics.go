// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "license_console"

var (
	// Registry holds the console's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "commands_total",
			Help:      "Mutating ledger commands by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "command_duration_seconds",
			Help:      "Duration of ledger commands, excluding the follow-up refetch.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"operation"},
	)

	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "fetches_total",
			Help:      "Collection fetches by outcome.",
		},
		[]string{"collection", "outcome"},
	)

	projectionRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "projection",
			Name:      "rows",
			Help:      "Rows currently held by each projection.",
		},
		[]string{"collection"},
	)

	pollRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "runs_total",
			Help:      "Poll ticks by job, including skipped ones.",
		},
		[]string{"job", "result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		commandsTotal,
		commandDuration,
		fetchesTotal,
		projectionRows,
		pollRuns,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordCommand counts a command attempt; outcome is "success" or a failure kind.
func RecordCommand(operation, outcome string, duration time.Duration) {
	commandsTotal.WithLabelValues(operation, outcome).Inc()
	commandDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordFetch(collection string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	fetchesTotal.WithLabelValues(collection, outcome).Inc()
}

func SetProjectionRows(collection string, rows int) {
	projectionRows.WithLabelValues(collection).Set(float64(rows))
}

func RecordPoll(job, result string) {
	pollRuns.WithLabelValues(job, result).Inc()
}

// GinMiddleware records request counts and latencies by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
