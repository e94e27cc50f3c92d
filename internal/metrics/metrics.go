package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// HoldsCreated counts successfully created holds.
	HoldsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "holds_created_total",
			Help: "Total number of holds created",
		},
	)

	// HoldsExpired counts holds released by the expiry sweep or the
	// check-on-read guard.
	HoldsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "holds_expired_total",
			Help: "Total number of holds expired",
		},
	)

	// BookingsTotal counts bookings by status transition.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookings_total",
			Help: "Total number of booking transitions",
		},
		[]string{"status"},
	)

	// PaymentsTotal counts payment attempts by outcome.
	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Total number of payment attempts",
		},
		[]string{"outcome"},
	)
)

// Middleware records request count and latency for every handler.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start).Seconds()
		path := routeLabel(r.URL.Path)
		RequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routeLabel collapses variable path segments (hold tokens, booking
// codes, resource IDs) into placeholders so the label set stays bounded
// by the route shapes rather than the traffic.
func routeLabel(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(segs) >= 3 && segs[0] == "bookings" && segs[1] == "hold":
		segs[2] = ":token"
	case len(segs) >= 3 && segs[0] == "bookings" && segs[1] == "webhook":
		segs[2] = ":gateway"
	case len(segs) >= 2 && segs[0] == "bookings" && segs[1] != "init" && segs[1] != "calculate":
		segs[1] = ":code"
	case len(segs) >= 2 && segs[0] == "rooms":
		segs[1] = ":id"
	case len(segs) >= 3 && segs[0] == "admin" && segs[1] == "hotels":
		segs[2] = ":id"
	}
	return "/" + strings.Join(segs, "/")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
