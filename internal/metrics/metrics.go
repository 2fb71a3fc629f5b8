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
	XPAwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameXPAwards,
			Help: HelpTextXPAwards,
		},
		[]string{LabelActivityType, LabelDifficulty},
	)

	XPRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameXPRejections,
			Help: HelpTextXPRejections,
		},
		[]string{LabelReason},
	)

	XPAwarded = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameXPAwarded,
			Help:    HelpTextXPAwarded,
			Buckets: XPBuckets,
		},
		[]string{LabelActivityType},
	)

	BonusesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameBonusesApplied,
			Help: HelpTextBonusesApplied,
		},
		[]string{LabelRule},
	)

	StreaksBroken = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStreaksBroken,
			Help: HelpTextStreaksBroken,
		},
		[]string{LabelStreakType},
	)

	LevelUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameLevelUps,
			Help: HelpTextLevelUps,
		},
	)

	CalcDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameCalcDuration,
			Help:    HelpTextCalcDuration,
			Buckets: CalcLatencyBuckets,
		},
	)

	ReportsBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameReportsBuilt,
			Help: HelpTextReportsBuilt,
		},
	)
)
