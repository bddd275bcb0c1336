package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
	MetricNameHTTPRateLimited      = "http_requests_rate_limited_total"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameMissionsCompleted   = "missions_completed_total"
	MetricNameActionsRejected     = "actions_rejected_total"
	MetricNamePointsAwarded       = "points_awarded_total"
	MetricNameCo2SavedKg          = "co2_saved_kg_total"
	MetricNameBadgesAwarded       = "badges_awarded_total"
	MetricNameMilestonesCompleted = "milestones_completed_total"
	MetricNameMilestonesExpired   = "milestones_expired_total"
	MetricNameChallengesCompleted = "challenges_completed_total"
	MetricNameChallengesExpired   = "challenges_expired_total"
	MetricNameDeliveryFailures    = "delivery_failures_total"
	MetricNamePoolCacheLookups    = "mission_pool_cache_lookups_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
	HelpTextHTTPRateLimited      = "Total number of HTTP requests rejected by the rate limiter"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextMissionsCompleted   = "Total number of settled mission completions"
	HelpTextActionsRejected     = "Total number of rejected actions by reason"
	HelpTextPointsAwarded       = "Total points awarded by source"
	HelpTextCo2SavedKg          = "Total kilograms of CO2 saved by action kind"
	HelpTextBadgesAwarded       = "Total number of badges awarded"
	HelpTextMilestonesCompleted = "Total number of milestones completed"
	HelpTextMilestonesExpired   = "Total number of milestones failed by the expiration sweep"
	HelpTextChallengesCompleted = "Total number of community challenges completed"
	HelpTextChallengesExpired   = "Total number of community challenges failed by the expiration sweep"
	HelpTextDeliveryFailures    = "Total number of swallowed notification or feed delivery failures"
	HelpTextPoolCacheLookups    = "Daily mission pool cache lookups by result"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelSource  = "source"
	LabelKind    = "kind"
	LabelReason  = "reason"
	LabelBadge   = "badge"
	LabelChannel = "channel"
	LabelResult  = "result"
)

// Label values
const (
	SourceAction    = "action"
	SourceMilestone = "milestone"
	SourceBonus     = "bonus"

	ChannelNotification = "notification"
	ChannelFeed         = "feed"

	ResultHit  = "hit"
	ResultMiss = "miss"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadUnexpected = "Event payload has unexpected shape"
	LogMsgMetricsRecorded        = "Metrics recorded for event"
)
