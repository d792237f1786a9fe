package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared across modules.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	ViolationsTotal     *prometheus.CounterVec
	IntakesLogged       prometheus.Counter
	ProfilesCreated     prometheus.Counter
	SummaryCache        *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests; nil skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hydration_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "method", "status"}),
		ViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hydration_validation_violations_total",
			Help: "Validation violations reported to clients, by message key",
		}, []string{"key"}),
		IntakesLogged: factory.NewCounter(prometheus.CounterOpts{
			Name: "hydration_intakes_logged_total",
			Help: "Total number of water intakes logged",
		}),
		ProfilesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "hydration_profiles_created_total",
			Help: "Total number of user profiles provisioned",
		}),
		SummaryCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hydration_summary_cache_total",
			Help: "Daily summary cache lookups by result",
		}, []string{"result"}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hydration_events_published_total",
			Help: "Domain events published by subject and outcome",
		}, []string{"subject", "outcome"}),
	}
}

// ObserveRequest records one HTTP request. Call with time.Now() taken at the start.
func (m *Metrics) ObserveRequest(route, method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())
}

// RecordViolation counts one violation by key.
func (m *Metrics) RecordViolation(key string) {
	if m == nil {
		return
	}
	m.ViolationsTotal.WithLabelValues(key).Inc()
}

// IncrementIntakesLogged counts a logged intake.
func (m *Metrics) IncrementIntakesLogged() {
	if m == nil {
		return
	}
	m.IntakesLogged.Inc()
}

// IncrementProfilesCreated counts a provisioned profile.
func (m *Metrics) IncrementProfilesCreated() {
	if m == nil {
		return
	}
	m.ProfilesCreated.Inc()
}

// RecordCacheResult counts a summary cache lookup: "hit", "miss" or "error".
func (m *Metrics) RecordCacheResult(result string) {
	if m == nil {
		return
	}
	m.SummaryCache.WithLabelValues(result).Inc()
}

// RecordEvent counts an outbound event by outcome: "published", "failed" when
// the broker rejects it, or "dropped" when the outbox is full.
func (m *Metrics) RecordEvent(subject, outcome string) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(subject, outcome).Inc()
}
