package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)

	HTTPRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRateLimited,
			Help: HelpTextHTTPRateLimited,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	MissionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMissionsCompleted,
			Help: HelpTextMissionsCompleted,
		},
	)

	ActionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionsRejected,
			Help: HelpTextActionsRejected,
		},
		[]string{LabelKind, LabelReason},
	)

	PointsAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePointsAwarded,
			Help: HelpTextPointsAwarded,
		},
		[]string{LabelSource},
	)

	Co2SavedKg = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCo2SavedKg,
			Help: HelpTextCo2SavedKg,
		},
		[]string{LabelKind},
	)

	BadgesAwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBadgesAwarded,
			Help: HelpTextBadgesAwarded,
		},
		[]string{LabelBadge},
	)

	MilestonesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMilestonesCompleted,
			Help: HelpTextMilestonesCompleted,
		},
		[]string{LabelType},
	)

	MilestonesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMilestonesExpired,
			Help: HelpTextMilestonesExpired,
		},
	)

	ChallengesCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameChallengesCompleted,
			Help: HelpTextChallengesCompleted,
		},
	)

	ChallengesExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameChallengesExpired,
			Help: HelpTextChallengesExpired,
		},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDeliveryFailures,
			Help: HelpTextDeliveryFailures,
		},
		[]string{LabelChannel},
	)

	PoolCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNamePoolCacheLookups,
			Help: HelpTextPoolCacheLookups,
		},
		[]string{LabelResult},
	)
)
