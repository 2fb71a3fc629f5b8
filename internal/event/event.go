package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// Common event types
const (
	XPAwarded       Type = "xp.awarded"
	XPRejected      Type = "xp.rejected"
	LevelUp         Type = "level.up"
	StreakBroken    Type = "streak.broken"
	GamingSuspected Type = "gaming.suspected"
	ConfigUpdated   Type = "config.updated"
	ReportGenerated Type = "report.generated"
)

// EventSchemaVersion is the current event schema version
const EventSchemaVersion = "1.0"

// Typed event payloads for type safety

// XPAwardedPayloadV1 is the typed payload for award events
type XPAwardedPayloadV1 struct {
	UserID       string `json:"user_id"`
	ActivityID   string `json:"activity_id"`
	ActivityType string `json:"activity_type"`
	XPAwarded    int    `json:"xp_awarded"`
	OverallScore int    `json:"overall_score"`
	Tier         string `json:"tier"`
	Timestamp    int64  `json:"timestamp"`
}

// XPRejectedPayloadV1 is the typed payload for rejected submissions
type XPRejectedPayloadV1 struct {
	UserID     string `json:"user_id"`
	ActivityID string `json:"activity_id"`
	Reason     string `json:"reason"` // "validation", "duplicate", "gaming"
	Timestamp  int64  `json:"timestamp"`
}

// LevelUpPayloadV1 is the typed payload for level up events
type LevelUpPayloadV1 struct {
	UserID   string `json:"user_id"`
	OldLevel int    `json:"old_level"`
	NewLevel int    `json:"new_level"`
	TotalXP  int64  `json:"total_xp"`
}

// StreakBrokenPayloadV1 is the typed payload for streak break events
type StreakBrokenPayloadV1 struct {
	UserID     string `json:"user_id"`
	StreakType string `json:"streak_type"`
	Length     int    `json:"length"` // streak length before the break
	ActivityID string `json:"activity_id"`
}

// GamingSuspectedPayloadV1 is the typed payload for gaming guard trips
type GamingSuspectedPayloadV1 struct {
	UserID           string `json:"user_id"`
	ActivityID       string `json:"activity_id"`
	AcceptedInWindow int    `json:"accepted_in_window"`
	WindowSeconds    int    `json:"window_seconds"`
	Timestamp        int64  `json:"timestamp"`
}

// Type-safe event constructors

// NewXPAwardedEvent creates a new award event with type-safe payload
func NewXPAwardedEvent(userID, activityID, activityType string, xp, score int, tier string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    XPAwarded,
		Payload: XPAwardedPayloadV1{
			UserID:       userID,
			ActivityID:   activityID,
			ActivityType: activityType,
			XPAwarded:    xp,
			OverallScore: score,
			Tier:         tier,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewXPRejectedEvent creates a new rejection event
func NewXPRejectedEvent(userID, activityID, reason string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    XPRejected,
		Payload: XPRejectedPayloadV1{
			UserID:     userID,
			ActivityID: activityID,
			Reason:     reason,
			Timestamp:  time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// NewLevelUpEvent creates a new level up event
func NewLevelUpEvent(userID string, oldLevel, newLevel int, totalXP int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LevelUp,
		Payload: LevelUpPayloadV1{
			UserID:   userID,
			OldLevel: oldLevel,
			NewLevel: newLevel,
			TotalXP:  totalXP,
		},
		Metadata: nil,
	}
}

// NewStreakBrokenEvent creates a new streak break event
func NewStreakBrokenEvent(userID, streakType string, length int, activityID string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    StreakBroken,
		Payload: StreakBrokenPayloadV1{
			UserID:     userID,
			StreakType: streakType,
			Length:     length,
			ActivityID: activityID,
		},
		Metadata: nil,
	}
}

// NewGamingSuspectedEvent creates a new gaming guard event
func NewGamingSuspectedEvent(userID, activityID string, acceptedInWindow, windowSeconds int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    GamingSuspected,
		Payload: GamingSuspectedPayloadV1{
			UserID:           userID,
			ActivityID:       activityID,
			AcceptedInWindow: acceptedInWindow,
			WindowSeconds:    windowSeconds,
			Timestamp:        time.Now().Unix(),
		},
		Metadata: nil,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	// Handlers run synchronously; the award path publishes after persistence
	// so a slow subscriber never holds the per-user lock.
	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("encountered %d errors while handling event %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
