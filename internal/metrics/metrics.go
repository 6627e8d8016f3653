package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmart_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pawmart_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmart_checkouts_total",
			Help: "Total number of checkout attempts",
		},
		[]string{"status"},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmart_order_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"target", "status"},
	)

	assignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawmart_rider_assignments_total",
			Help: "Total number of rider assignment attempts",
		},
		[]string{"mode", "status"},
	)
)

func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, path, code).Inc()
	httpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

func RecordCheckout(success bool) {
	checkoutsTotal.WithLabelValues(outcome(success)).Inc()
}

func RecordTransition(target string, success bool) {
	transitionsTotal.WithLabelValues(target, outcome(success)).Inc()
}

// RecordAssignment tracks rider assignments; mode is "auto" or "manual".
func RecordAssignment(mode string, success bool) {
	assignmentsTotal.WithLabelValues(mode, outcome(success)).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
