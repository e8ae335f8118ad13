// Package metrics exposes Prometheus collectors for the lottery service.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "lotto",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lotto",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ticketsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "intake",
			Name:      "tickets_submitted_total",
			Help:      "Total number of accepted ticket submissions.",
		},
	)

	settlementRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "settlement",
			Name:      "runs_total",
			Help:      "Total number of settlement runs.",
		},
		[]string{"status"},
	)

	settlementDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lotto",
			Subsystem: "settlement",
			Name:      "run_duration_seconds",
			Help:      "Duration of settlement runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	verdictsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "settlement",
			Name:      "verdicts_created_total",
			Help:      "Total number of newly persisted verdicts.",
		},
	)

	announcements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lotto",
			Subsystem: "announcer",
			Name:      "responses_total",
			Help:      "Total number of announcement responses by message.",
		},
		[]string{"message"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ticketsSubmitted,
		settlementRuns,
		settlementDuration,
		verdictsCreated,
		announcements,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordTicketSubmitted counts one accepted submission.
func RecordTicketSubmitted() {
	ticketsSubmitted.Inc()
}

// RecordSettlementRun records the outcome of one settlement run.
func RecordSettlementRun(duration time.Duration, created int, failed bool) {
	status := "succeeded"
	if failed {
		status = "failed"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	settlementRuns.WithLabelValues(status).Inc()
	settlementDuration.Observe(duration.Seconds())
	if created > 0 {
		verdictsCreated.Add(float64(created))
	}
}

// RecordAnnouncement counts one announcement response by message kind.
func RecordAnnouncement(message string) {
	if message == "" {
		message = "unknown"
	}
	announcements.WithLabelValues(message).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) >= 2 && parts[0] == "api" {
		parts = parts[2:]
		if len(parts) == 0 {
			return "/api"
		}
	}
	switch parts[0] {
	case "results":
		return "/results/:ticket_id"
	case "draws":
		if len(parts) >= 3 && parts[2] == "settlement" {
			return "/draws/:draw_date/settlement"
		}
		if len(parts) == 2 {
			return "/draws/" + parts[1]
		}
		return "/draws"
	default:
		return "/" + parts[0]
	}
}
