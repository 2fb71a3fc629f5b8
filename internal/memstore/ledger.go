package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
)

// LedgerStore holds XP records and per-user totals in memory
type LedgerStore struct {
	mu      sync.RWMutex
	records map[string]*domain.XPRecord // key: userID + "\x00" + activityID
	byUser  map[string][]*domain.XPRecord
	totals  map[string]domain.UserTotal
}

// NewLedgerStore creates an empty ledger store
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		records: make(map[string]*domain.XPRecord),
		byUser:  make(map[string][]*domain.XPRecord),
		totals:  make(map[string]domain.UserTotal),
	}
}

// InsertRecord persists a record, rejecting a second award of the same
// activity
func (s *LedgerStore) InsertRecord(ctx context.Context, record *domain.XPRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(record.UserID, record.ActivityID)
	if _, exists := s.records[key]; exists {
		return fmt.Errorf("%w: activity %s", domain.ErrDuplicateActivity, record.ActivityID)
	}

	clone := *record
	s.records[key] = &clone
	s.byUser[record.UserID] = append(s.byUser[record.UserID], &clone)
	return nil
}

// GetRecordByActivity returns the record of one awarded activity
func (s *LedgerStore) GetRecordByActivity(ctx context.Context, userID, activityID string) (*domain.XPRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordKey(userID, activityID)]
	if !ok {
		return nil, fmt.Errorf("%w: activity %s", domain.ErrRecordNotFound, activityID)
	}
	clone := *record
	return &clone, nil
}

// CountUserRecords returns the lifetime number of accepted awards
func (s *LedgerStore) CountUserRecords(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byUser[userID]), nil
}

// CountRecentRecords returns the number of accepted awards since the given
// instant
func (s *LedgerStore) CountRecentRecords(ctx context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, record := range s.byUser[userID] {
		if record.Timestamp.After(since) {
			count++
		}
	}
	return count, nil
}

// GetRecentRecords returns the newest accepted awards, newest first
func (s *LedgerStore) GetRecentRecords(ctx context.Context, userID string, limit int) ([]domain.XPRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byUser[userID]
	sorted := make([]*domain.XPRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]domain.XPRecord, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, *r)
	}
	return out, nil
}

// GetActivityTypeTotals aggregates awarded XP per activity type, highest
// total first
func (s *LedgerStore) GetActivityTypeTotals(ctx context.Context, userID string, limit int) ([]domain.ActivityTypeXP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byType := make(map[domain.ActivityType]*domain.ActivityTypeXP)
	for _, record := range s.byUser[userID] {
		agg, ok := byType[record.Activity.Type]
		if !ok {
			agg = &domain.ActivityTypeXP{ActivityType: record.Activity.Type}
			byType[record.Activity.Type] = agg
		}
		agg.TotalXP += int64(record.XPAwarded)
		agg.Count++
	}

	out := make([]domain.ActivityTypeXP, 0, len(byType))
	for _, agg := range byType {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalXP != out[j].TotalXP {
			return out[i].TotalXP > out[j].TotalXP
		}
		return out[i].ActivityType < out[j].ActivityType
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetUserTotal returns the running total of one user
func (s *LedgerStore) GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total, ok := s.totals[userID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return &total, nil
}

// AddToUserTotal atomically adds delta to the running total
func (s *LedgerStore) AddToUserTotal(ctx context.Context, userID string, delta int, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := s.totals[userID]
	total.UserID = userID
	total.TotalXP += int64(delta)
	total.AchievedAt = at
	s.totals[userID] = total
	return total.TotalXP, nil
}

// SetUserTotal overwrites the running total, for reconciliation
func (s *LedgerStore) SetUserTotal(ctx context.Context, total domain.UserTotal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totals[total.UserID] = total
	return nil
}

// ListUserTotals returns every running total
func (s *LedgerStore) ListUserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserTotal, 0, len(s.totals))
	for _, total := range s.totals {
		out = append(out, total)
	}
	return out, nil
}

// SumAwardedXP recomputes the total from the records
func (s *LedgerStore) SumAwardedXP(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum int64
	for _, record := range s.byUser[userID] {
		sum += int64(record.XPAwarded)
	}
	return sum, nil
}

// GetLeaderboard returns the top totals by XP descending, earliest
// achievement first on ties
func (s *LedgerStore) GetLeaderboard(ctx context.Context, limit int) ([]domain.UserTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserTotal, 0, len(s.totals))
	for _, total := range s.totals {
		out = append(out, total)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalXP != out[j].TotalXP {
			return out[i].TotalXP > out[j].TotalXP
		}
		if !out[i].AchievedAt.Equal(out[j].AchievedAt) {
			return out[i].AchievedAt.Before(out[j].AchievedAt)
		}
		return out[i].UserID < out[j].UserID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func recordKey(userID, activityID string) string {
	return userID + "\x00" + activityID
}
