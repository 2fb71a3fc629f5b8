package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/skillforge/xp-engine/internal/eventlog"
)

// EventLogStore holds logged events in memory
type EventLogStore struct {
	mu      sync.Mutex
	nextID  int64
	entries []eventlog.Entry
}

// NewEventLogStore creates an empty event log store
func NewEventLogStore() *EventLogStore {
	return &EventLogStore{nextID: 1}
}

// LogEvent appends an event
func (s *EventLogStore) LogEvent(ctx context.Context, eventType string, userID *string, payload, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, eventlog.Entry{
		ID:        s.nextID,
		EventType: eventType,
		UserID:    userID,
		Payload:   payload,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	})
	s.nextID++
	return nil
}

// GetEvents retrieves events matching the filter, newest first
func (s *EventLogStore) GetEvents(ctx context.Context, filter eventlog.Filter) ([]eventlog.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []eventlog.Entry
	for _, entry := range s.entries {
		if filter.UserID != nil && (entry.UserID == nil || *entry.UserID != *filter.UserID) {
			continue
		}
		if filter.EventType != nil && entry.EventType != *filter.EventType {
			continue
		}
		if filter.Since != nil && entry.CreatedAt.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && entry.CreatedAt.After(*filter.Until) {
			continue
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// GetEventsByUser retrieves events for a specific user, newest first
func (s *EventLogStore) GetEventsByUser(ctx context.Context, userID string, limit int) ([]eventlog.Entry, error) {
	return s.GetEvents(ctx, eventlog.Filter{UserID: &userID, Limit: limit})
}

// CleanupOldEvents removes events older than the retention period
func (s *EventLogStore) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	kept := s.entries[:0]
	var removed int64
	for _, entry := range s.entries {
		if entry.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries = kept
	return removed, nil
}
