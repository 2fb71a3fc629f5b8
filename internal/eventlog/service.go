package eventlog

import (
	"context"
	"encoding/json"

	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/logger"
)

// Service handles event logging business logic
type Service interface {
	// Subscribe registers the event logger to listen to all events
	Subscribe(bus event.Bus) error

	// GetUserEvents returns the logged events of one user, newest first
	GetUserEvents(ctx context.Context, userID string, limit int) ([]Entry, error)

	// CleanupOldEvents removes events older than retention period
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new event logging service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Subscribe registers event handlers for all event types
func (s *service) Subscribe(bus event.Bus) error {
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
		bus.Subscribe(eventType, s.handleEvent)
	}

	return nil
}

// handleEvent persists one published event. Payloads are typed structs, so
// they round-trip through JSON into the generic column shape.
func (s *service) handleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := payloadToMap(evt.Payload)
	if err != nil {
		log.Debug(LogMsgPayloadNotEncodable, "type", evt.Type, "error", err)
		return nil
	}

	var userID *string
	if uid, ok := payload[PayloadKeyUserID].(string); ok {
		userID = &uid
	}

	var metadata map[string]interface{}
	if evt.Metadata != nil {
		metadata, _ = payloadToMap(evt.Metadata)
	}

	if err := s.repo.LogEvent(ctx, string(evt.Type), userID, payload, metadata); err != nil {
		log.Error(LogMsgFailedToLogEvent, "error", err, "type", evt.Type)
		return err
	}

	log.Debug(LogMsgEventLogged, "type", evt.Type, "user_id", userID)
	return nil
}

// GetUserEvents returns the logged events of one user
func (s *service) GetUserEvents(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return s.repo.GetEventsByUser(ctx, userID, limit)
}

// CleanupOldEvents removes events older than the retention period
func (s *service) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldEvents(ctx, retentionDays)
}

func payloadToMap(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
