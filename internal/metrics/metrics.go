package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	defaultRegistry *MetricsRegistry
	registryOnce    sync.Once
)

// Default returns the process-wide registry. promauto registers with
// the global Prometheus registry, so this must only ever run once.
func Default() *MetricsRegistry {
	registryOnce.Do(func() {
		defaultRegistry = NewMetricsRegistry()
	})
	return defaultRegistry
}

// MetricsRegistry holds all Prometheus metrics for Tribune
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Pipeline Metrics
	EventsProcessedTotal   prometheus.CounterVec
	PointsAwardedTotal     prometheus.Counter
	LevelUpsTotal          prometheus.Counter
	FloodSuppressionsTotal prometheus.Counter
	AwardsRateLimitedTotal prometheus.Counter

	// Identity Metrics
	ResolutionHitsTotal   prometheus.Counter
	ResolutionMissesTotal prometheus.Counter
	MembersCreatedTotal   prometheus.Counter

	// Moderation Metrics
	ViolationsTotal prometheus.CounterVec

	// Business Gauges
	ActiveMembers prometheus.GaugeVec
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry with all metrics
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tribune_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tribune_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tribune_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
			[]string{"endpoint"},
		),
		EventsProcessedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tribune_events_processed_total",
				Help: "Gateway events processed by type",
			},
			[]string{"type"},
		),
		PointsAwardedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_points_awarded_total",
				Help: "Points awarded across all groups",
			},
		),
		LevelUpsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_level_ups_total",
				Help: "Level transitions caused by point awards",
			},
		),
		FloodSuppressionsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_flood_suppressions_total",
				Help: "Messages ignored for accrual by the flood window",
			},
		),
		AwardsRateLimitedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_awards_rate_limited_total",
				Help: "Point awards deferred by the per-member minimum interval",
			},
		),
		ResolutionHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_resolution_hits_total",
				Help: "Ephemeral tokens successfully mapped to a phone",
			},
		),
		ResolutionMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_resolution_misses_total",
				Help: "Ephemeral tokens that stayed unresolved",
			},
		),
		MembersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tribune_members_created_total",
				Help: "New member records created",
			},
		),
		ViolationsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tribune_moderation_violations_total",
				Help: "Moderation violations by detector type",
			},
			[]string{"type"},
		),
		ActiveMembers: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tribune_active_members",
				Help: "Current members per group",
			},
			[]string{"group"},
		),
	}
}
