package eventlog

import (
	"context"
	"time"
)

// Entry represents a logged event
type Entry struct {
	ID        int64                  `json:"id"`
	EventType string                 `json:"event_type"`
	UserID    *string                `json:"user_id,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Filter filters events for queries
type Filter struct {
	UserID    *string
	EventType *string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

// Repository defines the interface for event log storage
type Repository interface {
	// LogEvent stores an event
	LogEvent(ctx context.Context, eventType string, userID *string, payload, metadata map[string]interface{}) error

	// GetEvents retrieves events based on filter criteria
	GetEvents(ctx context.Context, filter Filter) ([]Entry, error)

	// GetEventsByUser retrieves events for a specific user, newest first
	GetEventsByUser(ctx context.Context, userID string, limit int) ([]Entry, error)

	// CleanupOldEvents removes events older than the specified number of days
	CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error)
}
