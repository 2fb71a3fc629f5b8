package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/eventlog"
	"github.com/skillforge/xp-engine/internal/metrics"
)

// RegisterEventHandlers sets up all event subscribers.
// This includes:
// - Metrics collector (for event-based metrics)
// - Event logger (persists events for audit queries)
func RegisterEventHandlers(eventBus event.Bus, eventlogService eventlog.Service) error {
	// Register Metrics Collector
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(eventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	// Subscribe Event Logger
	if err := eventlogService.Subscribe(eventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSubscribeEventLogger, err)
	}
	slog.Info(LogMsgEventLoggerInitialized)

	return nil
}
