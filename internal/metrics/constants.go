package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameXPAwards       = "xp_awards_total"
	MetricNameXPRejections   = "xp_rejections_total"
	MetricNameXPAwarded      = "xp_awarded_points"
	MetricNameBonusesApplied = "bonuses_applied_total"
	MetricNameStreaksBroken  = "streaks_broken_total"
	MetricNameLevelUps       = "level_ups_total"
	MetricNameCalcDuration   = "xp_calculation_duration_seconds"
	MetricNameReportsBuilt   = "transparency_reports_built_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextXPAwards       = "Total number of accepted XP awards"
	HelpTextXPRejections   = "Total number of rejected XP submissions"
	HelpTextXPAwarded      = "Distribution of XP awarded per accepted activity"
	HelpTextBonusesApplied = "Total number of bonus rules that fired"
	HelpTextStreaksBroken  = "Total number of broken streaks"
	HelpTextLevelUps       = "Total number of level ups"
	HelpTextCalcDuration   = "End-to-end award calculation latency in seconds"
	HelpTextReportsBuilt   = "Total number of transparency reports generated"
)

// ============================================================================
// Metric Label Names
// ============================================================================

const (
	LabelMethod       = "method"
	LabelPath         = "path"
	LabelStatus       = "status"
	LabelType         = "type"
	LabelActivityType = "activity_type"
	LabelDifficulty   = "difficulty"
	LabelReason       = "reason"
	LabelRule         = "rule"
	LabelStreakType   = "streak_type"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// CalcLatencyBuckets covers the award path, which is expected to stay well
// under a second
var CalcLatencyBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}

// XPBuckets covers realistic per-activity award sizes (5 base XP up to
// outstanding advanced activities with stacked bonuses)
var XPBuckets = []float64{5, 10, 20, 30, 45, 60, 80, 100, 150}

// ============================================================================
// Log Messages
// ============================================================================

const (
	LogMsgEventPayloadUnexpected = "Event payload has unexpected type"
	LogMsgMetricsRecorded        = "Metrics recorded for event"
)
