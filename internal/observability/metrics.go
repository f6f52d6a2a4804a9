package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irisdash",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "irisdash",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	callbackPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "irisdash",
			Subsystem: "callback",
			Name:      "points",
			Help:      "Points left after filtering, per interaction.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 75, 100, 150},
		},
	)
	regressionFits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "irisdash",
			Subsystem: "regression",
			Name:      "fits_total",
			Help:      "Regression fits attempted, by outcome.",
		},
		[]string{"outcome"},
	)
)

// RegisterMetrics registers the collectors with the default registry. Safe to
// call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, callbackPoints, regressionFits)
	})
}

// RecordHTTPRequest observes one served request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCallback observes the number of points an interaction produced
func RecordCallback(points int) {
	RegisterMetrics()
	callbackPoints.Observe(float64(points))
}

// RecordRegression counts one fit attempt. outcome is "ok" or "insufficient".
func RecordRegression(outcome string) {
	RegisterMetrics()
	regressionFits.WithLabelValues(outcome).Inc()
}

// HTTPRequestsCounter returns the request counter for one label set
func HTTPRequestsCounter(method, path string, status int) prometheus.Counter {
	return httpRequests.WithLabelValues(method, path, strconv.Itoa(status))
}
