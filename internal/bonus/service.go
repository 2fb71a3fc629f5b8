package bonus

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/logger"
)

// Service defines the Bonus & Streak engine business logic
type Service interface {
	// UpdateStreaks advances all streak counters for one completed activity
	UpdateStreaks(ctx context.Context, userID, activityID string, activity domain.ActivityData, overallScore int, at time.Time) (map[domain.StreakType]*domain.StreakData, error)

	// GetStreaks returns the current streak set without mutating it
	GetStreaks(ctx context.Context, userID string) (map[domain.StreakType]*domain.StreakData, error)

	// Evaluate runs the prioritized rule set against metrics and streak state
	Evaluate(ctx context.Context, metrics domain.PerformanceMetrics, streaks map[domain.StreakType]*domain.StreakData) (*domain.BonusResult, error)

	// SaveRule validates and persists a bonus rule
	SaveRule(ctx context.Context, rule domain.BonusRule) error
}

type service struct {
	repo Repository
	bus  event.Bus
	now  func() time.Time
}

// NewService creates a new bonus service
func NewService(repo Repository, bus event.Bus) Service {
	return &service{
		repo: repo,
		bus:  bus,
		now:  time.Now,
	}
}

// Evaluate sorts active, time-valid rules by descending priority and
// evaluates each rule's conditions as a logical AND. A malformed rule is
// excluded and logged, never allowed to abort evaluation of the rest.
// After summing rule bonuses, at most one special-event multiplier applies.
func (s *service) Evaluate(ctx context.Context, metrics domain.PerformanceMetrics, streaks map[domain.StreakType]*domain.StreakData) (*domain.BonusResult, error) {
	log := logger.FromContext(ctx)

	rules, err := s.repo.GetBonusRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bonus rules: %w", err)
	}

	now := s.now()
	active := make([]domain.BonusRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if now.Before(rule.ValidFrom) {
			continue
		}
		if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
			continue
		}
		active = append(active, rule)
	}
	sort.Slice(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].ID < active[j].ID
	})

	result := &domain.BonusResult{}
	for _, rule := range active {
		application, missed, err := s.evaluateRule(rule, metrics, streaks)
		if err != nil {
			log.Warn("Excluding malformed bonus rule", "rule_id", rule.ID, "error", err)
			continue
		}
		if application != nil {
			result.TotalBonus += application.Points
			result.Applications = append(result.Applications, *application)
		} else if missed != nil {
			result.MissedBonuses = append(result.MissedBonuses, *missed)
		}
	}

	s.applySpecialEvent(ctx, result, now)

	return result, nil
}

// evaluateRule evaluates all conditions of one rule. Returns the
// application when every condition holds, or a near-miss when exactly one
// numeric threshold condition failed inside the margin.
func (s *service) evaluateRule(rule domain.BonusRule, metrics domain.PerformanceMetrics, streaks map[domain.StreakType]*domain.StreakData) (*domain.BonusApplication, *domain.MissedBonus, error) {
	satisfied := make([]domain.SatisfiedCondition, 0, len(rule.Conditions))
	var failedCount int
	var missed *domain.MissedBonus

	for _, cond := range rule.Conditions {
		ok, actual, err := evaluateCondition(cond, metrics, streaks)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			satisfied = append(satisfied, domain.SatisfiedCondition{Condition: cond, Actual: actual})
			continue
		}
		failedCount++
		if threshold, actualNum, near := nearMiss(cond, actual); near {
			missed = &domain.MissedBonus{
				RuleID:    rule.ID,
				RuleName:  rule.Name,
				Points:    rule.BonusPoints,
				Field:     cond.Field,
				Threshold: threshold,
				Actual:    actualNum,
				Distance:  math.Abs(actualNum - threshold),
			}
		}
	}

	if failedCount == 0 {
		return &domain.BonusApplication{
			RuleID:    rule.ID,
			RuleName:  rule.Name,
			Category:  rule.Category,
			Points:    rule.BonusPoints,
			Satisfied: satisfied,
		}, nil, nil
	}
	if failedCount == 1 && missed != nil {
		return nil, missed, nil
	}
	return nil, nil, nil
}

// applySpecialEvent selects the maximum bonusMultiplier among currently
// active events and adds round(totalBonus x (m-1)) as a separately labeled
// bonus line. Ties on multiplier pick the earliest-starting event so the
// label is stable.
func (s *service) applySpecialEvent(ctx context.Context, result *domain.BonusResult, now time.Time) {
	log := logger.FromContext(ctx)

	events, err := s.repo.GetSpecialEvents(ctx)
	if err != nil {
		// Events are a pure amplifier; rule bonuses already computed stand
		log.Warn("Failed to load special events, skipping multiplier", "error", err)
		return
	}

	var best *domain.SpecialEvent
	for i, evt := range events {
		if now.Before(evt.StartsAt) || now.After(evt.EndsAt) {
			continue
		}
		if best == nil ||
			evt.BonusMultiplier > best.BonusMultiplier ||
			(evt.BonusMultiplier == best.BonusMultiplier && evt.StartsAt.Before(best.StartsAt)) {
			best = &events[i]
		}
	}

	if best == nil || best.BonusMultiplier <= 1 || result.TotalBonus == 0 {
		return
	}

	eventBonus := int(math.Round(float64(result.TotalBonus) * (best.BonusMultiplier - 1)))
	result.EventName = best.Name
	result.EventMultiplier = best.BonusMultiplier
	result.EventBonus = eventBonus
	result.TotalBonus += eventBonus

	log.Info("Special event bonus applied",
		"event", best.Name,
		"multiplier", best.BonusMultiplier,
		"event_bonus", eventBonus)
}

// SaveRule validates then persists a bonus rule
func (s *service) SaveRule(ctx context.Context, rule domain.BonusRule) error {
	if err := ValidateRule(rule); err != nil {
		return err
	}
	if err := s.repo.PutBonusRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to store bonus rule: %w", err)
	}
	return nil
}
