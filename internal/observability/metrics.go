package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamwil123/pool-tracker/internal/platform/resilience"
	"github.com/jamwil123/pool-tracker/internal/usecase"
)

const metricsNamespace = "pool_tracker"

var _ usecase.StatsRecorder = (*Metrics)(nil)

// Metrics holds every Prometheus collector the service exports.
type Metrics struct {
	reconcileTotal    *prometheus.CounterVec
	reconcileDuration prometheus.Histogram
	reconcileRetries  prometheus.Counter
	profileDelta      *prometheus.CounterVec
	standingsRefresh  *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on reg. A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		reconcileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_total",
			Help:      "Match stats reconciliations by outcome.",
		}, []string{"outcome"}),
		reconcileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of match stats reconciliations including retries.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		reconcileRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_retries_total",
			Help:      "Reconciliation transactions re-run after a conflict.",
		}),
		profileDelta: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "profile_delta_frames_total",
			Help:      "Absolute frame win/loss deltas applied to profile totals.",
		}, []string{"kind"}),
		standingsRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "standings_refresh_total",
			Help:      "Scheduled standings refreshes by outcome.",
		}, []string{"outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "circuit_breaker_open",
			Help:      "1 while the named upstream circuit breaker is open or half open.",
		}, []string{"upstream"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.reconcileTotal,
		m.reconcileDuration,
		m.reconcileRetries,
		m.profileDelta,
		m.standingsRefresh,
		m.breakerState,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveReconcile(outcome string, duration time.Duration) {
	m.reconcileTotal.WithLabelValues(outcome).Inc()
	m.reconcileDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncReconcileRetry() {
	m.reconcileRetries.Inc()
}

func (m *Metrics) AddProfileDelta(wins, losses int) {
	m.profileDelta.WithLabelValues("wins").Add(float64(abs(wins)))
	m.profileDelta.WithLabelValues("losses").Add(float64(abs(losses)))
}

func (m *Metrics) ObserveStandingsRefresh(outcome string) {
	m.standingsRefresh.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackBreaker mirrors the breaker's state into the circuit_breaker_open gauge.
func (m *Metrics) TrackBreaker(upstream string, breaker *resilience.CircuitBreaker) {
	gauge := m.breakerState.WithLabelValues(upstream)
	gauge.Set(0)
	breaker.OnStateChange(func(_, to resilience.CircuitState) {
		if to == resilience.CircuitStateClosed {
			gauge.Set(0)
			return
		}
		gauge.Set(1)
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
