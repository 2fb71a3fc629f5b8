package metrics

import (
	"context"

	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.XPAwarded,
		event.XPRejected,
		event.LevelUp,
		event.StreakBroken,
		event.GamingSuspected,
		event.ConfigUpdated,
		event.ReportGenerated,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics. Payloads are the typed
// structs the event constructors build.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	// Always increment event counter
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.XPAwarded:
		payload, ok := evt.Payload.(event.XPAwardedPayloadV1)
		if !ok {
			log.Debug(LogMsgEventPayloadUnexpected, "type", evt.Type)
			return nil
		}
		XPAwarded.WithLabelValues(payload.ActivityType).Observe(float64(payload.XPAwarded))

	case event.XPRejected:
		payload, ok := evt.Payload.(event.XPRejectedPayloadV1)
		if !ok {
			log.Debug(LogMsgEventPayloadUnexpected, "type", evt.Type)
			return nil
		}
		XPRejections.WithLabelValues(payload.Reason).Inc()

	case event.LevelUp:
		LevelUps.Inc()

	case event.StreakBroken:
		payload, ok := evt.Payload.(event.StreakBrokenPayloadV1)
		if !ok {
			log.Debug(LogMsgEventPayloadUnexpected, "type", evt.Type)
			return nil
		}
		StreaksBroken.WithLabelValues(payload.StreakType).Inc()

	case event.ReportGenerated:
		ReportsBuilt.Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
