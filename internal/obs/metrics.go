package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_request_transitions_total",
			Help: "Committed payment request lifecycle transitions.",
		},
		[]string{"action"},
	)

	remindersEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_emitted_total",
		Help: "Reminder notifications emitted by the sweep.",
	})

	sweepFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_sweep_failures_total",
		Help: "Per-request failures skipped during reminder sweeps.",
	})
)

func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		transitionsTotal,
		remindersEmitted,
		sweepFailures,
	)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveTransition(action string) {
	transitionsTotal.WithLabelValues(action).Inc()
}

func ObserveReminders(count int) {
	remindersEmitted.Add(float64(count))
}

func ObserveSweepFailure() {
	sweepFailures.Inc()
}

// Instrument wraps a handler with RPS, latency and in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpInFlight.Dec()
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
