package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
)

// DefaultBonusRules returns the rule set seeded on startup. Operators can
// replace or extend it through the admin endpoints.
func DefaultBonusRules() []domain.BonusRule {
	return []domain.BonusRule{
		{
			ID:          "first-try-resolution",
			Name:        "First-Try Resolution",
			Category:    domain.BonusCategoryPerformance,
			BonusPoints: 8,
			Conditions: []domain.BonusCondition{
				{Source: domain.ConditionSourceMetric, Field: "first_time_resolution", Operator: domain.OpEqual, Value: true},
			},
			Priority: 100,
			Active:   true,
		},
		{
			ID:          "speed-bonus",
			Name:        "Speed Bonus",
			Category:    domain.BonusCategoryPerformance,
			BonusPoints: 5,
			Conditions: []domain.BonusCondition{
				{Source: domain.ConditionSourceMetric, Field: "resolution_time", Operator: domain.OpLessOrEqual, Value: 30.0},
			},
			Priority: 90,
			Active:   true,
		},
		{
			ID:          "knowledge-sharer",
			Name:        "Knowledge Sharer",
			Category:    domain.BonusCategoryPerformance,
			BonusPoints: 3,
			Conditions: []domain.BonusCondition{
				{Source: domain.ConditionSourceMetric, Field: "knowledge_sharing", Operator: domain.OpEqual, Value: true},
			},
			Priority: 80,
			Active:   true,
		},
		{
			ID:          "quality-streak-5",
			Name:        "Quality Streak",
			Category:    domain.BonusCategoryStreak,
			BonusPoints: 10,
			Conditions: []domain.BonusCondition{
				{Source: domain.ConditionSourceStreak, Field: string(domain.StreakQuality), Operator: domain.OpGreaterOrEqual, Value: 5.0},
			},
			Priority: 70,
			Active:   true,
		},
		{
			ID:          "perfect-streak-3",
			Name:        "Perfection Streak",
			Category:    domain.BonusCategoryStreak,
			BonusPoints: 15,
			Conditions: []domain.BonusCondition{
				{Source: domain.ConditionSourceStreak, Field: string(domain.StreakPerfect), Operator: domain.OpGreaterOrEqual, Value: 3.0},
			},
			Priority: 60,
			Active:   true,
		},
	}
}

// BonusStore holds bonus rules, special events and streak state in memory
type BonusStore struct {
	mu      sync.RWMutex
	rules   map[string]domain.BonusRule
	events  []domain.SpecialEvent
	streaks map[string]*domain.StreakData // key: userID + "\x00" + streak type
}

// NewBonusStore creates a store seeded with the default rule set
func NewBonusStore() *BonusStore {
	s := &BonusStore{
		rules:   make(map[string]domain.BonusRule),
		streaks: make(map[string]*domain.StreakData),
	}
	for _, rule := range DefaultBonusRules() {
		s.rules[rule.ID] = rule
	}
	return s
}

// GetBonusRules returns every stored rule
func (s *BonusStore) GetBonusRules(ctx context.Context) ([]domain.BonusRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.BonusRule, 0, len(s.rules))
	for _, rule := range s.rules {
		out = append(out, rule)
	}
	return out, nil
}

// PutBonusRule inserts or replaces a rule by ID
func (s *BonusStore) PutBonusRule(ctx context.Context, rule domain.BonusRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules[rule.ID] = rule
	return nil
}

// GetSpecialEvents returns every stored special event
func (s *BonusStore) GetSpecialEvents(ctx context.Context) ([]domain.SpecialEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SpecialEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// AddSpecialEvent registers a time-windowed bonus multiplier event
func (s *BonusStore) AddSpecialEvent(evt domain.SpecialEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, evt)
}

// GetStreak returns the streak state, zero-valued when never recorded
func (s *BonusStore) GetStreak(ctx context.Context, userID string, streakType domain.StreakType) (*domain.StreakData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if streak, ok := s.streaks[streakKey(userID, streakType)]; ok {
		clone := *streak
		clone.History = append([]domain.StreakEntry(nil), streak.History...)
		return &clone, nil
	}
	return &domain.StreakData{
		UserID:       userID,
		Type:         streakType,
		LastActivity: time.Time{},
	}, nil
}

// PutStreak stores the streak state
func (s *BonusStore) PutStreak(ctx context.Context, streak *domain.StreakData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *streak
	clone.History = append([]domain.StreakEntry(nil), streak.History...)
	s.streaks[streakKey(streak.UserID, streak.Type)] = &clone
	return nil
}

func streakKey(userID string, streakType domain.StreakType) string {
	return userID + "\x00" + string(streakType)
}
