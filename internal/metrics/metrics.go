package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/greeting-api/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Credential lifecycle

	AuthOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greeting",
		Name:      "auth_operations_total",
		Help:      "Credential operations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	PasswordHashDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "greeting",
		Name:      "password_hash_duration_seconds",
		Help:      "Time spent deriving argon2id keys.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"operation"})

	ResetEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greeting",
		Name:      "reset_emails_total",
		Help:      "Password reset emails handed to the sender, by outcome.",
	}, []string{"outcome"})

	// Cache

	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greeting",
		Name:      "cache_lookups_total",
		Help:      "Cache-aside lookups, by key kind and result.",
	}, []string{"kind", "result"})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "greeting",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greeting",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "greeting",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})
)

func Register() {
	prometheus.MustRegister(
		AuthOperationsTotal,
		PasswordHashDuration,
		ResetEmailsTotal,
		CacheLookupsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPInFlight,
	)
}

// NewServer serves /metrics, /livez and /readyz on a port separate from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	status := http.StatusOK
	if result.Status != "up" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
