// Package ledger orchestrates the award pipeline: validation, duplicate and
// gaming checks, scoring, streaks, bonuses, calculation and persistence. It
// is the only writer of XP records and totals.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/calculator"
	"github.com/skillforge/xp-engine/internal/concurrency"
	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/logger"
	"github.com/skillforge/xp-engine/internal/metrics"
	"github.com/skillforge/xp-engine/internal/scorer"
)

// Rejection reasons carried on xp.rejected events
const (
	RejectReasonValidation = "validation"
	RejectReasonDuplicate  = "duplicate"
	RejectReasonGaming     = "gaming"
)

const (
	defaultRecentLimit        = 10
	defaultTopActivitiesLimit = 3
)

// Service defines the XP ledger business logic
type Service interface {
	// AwardXP runs the full award pipeline for one submission and returns
	// the persisted record. Identical inputs always produce identical XP.
	AwardXP(ctx context.Context, tx domain.XPTransaction) (*domain.XPRecord, error)

	// GetCurrentXP returns the running total and level. Unknown users get
	// a zero-valued view, not an error.
	GetCurrentXP(ctx context.Context, userID string) (*domain.CurrentXP, error)

	// GetUserXPSummary returns the total, level, recent awards and top
	// activity types
	GetUserXPSummary(ctx context.Context, userID string) (*domain.UserXPSummary, error)

	// GetLeaderboard returns the top users by total XP
	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}

type service struct {
	repo    Repository
	scorer  scorer.Service
	bonuses bonus.Service
	guard   *RateGuard
	locks   *concurrency.LockManager
	bus     event.Bus
	now     func() time.Time
}

// NewService creates a new ledger service
func NewService(repo Repository, scorerSvc scorer.Service, bonusSvc bonus.Service, guard *RateGuard, locks *concurrency.LockManager, bus event.Bus) Service {
	return &service{
		repo:    repo,
		scorer:  scorerSvc,
		bonuses: bonusSvc,
		guard:   guard,
		locks:   locks,
		bus:     bus,
		now:     time.Now,
	}
}

// AwardXP validates, locks the user, checks for duplicates and gaming, then
// scores, advances streaks, evaluates bonuses, calculates and persists.
// Events publish after persistence so a slow subscriber never blocks the
// pipeline and a failed pipeline never emits an award event.
func (s *service) AwardXP(ctx context.Context, tx domain.XPTransaction) (*domain.XPRecord, error) {
	log := logger.FromContext(ctx)
	start := s.now()

	if err := tx.Validate(); err != nil {
		s.publishRejection(ctx, tx, RejectReasonValidation)
		return nil, err
	}

	// One submission per user at a time: duplicate detection, the gaming
	// window and streak mutation form a single critical section.
	lock := s.locks.GetLock(tx.UserID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := s.repo.GetRecordByActivity(ctx, tx.UserID, tx.ActivityID); err == nil {
		log.Warn("Duplicate activity submission rejected",
			"user_id", tx.UserID,
			"activity_id", tx.ActivityID)
		s.publishRejection(ctx, tx, RejectReasonDuplicate)
		return nil, fmt.Errorf("%w: activity %s", domain.ErrDuplicateActivity, tx.ActivityID)
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate: %w", err)
	}

	now := s.now()
	if !s.guard.Allow(tx.UserID, now) {
		s.publishRejection(ctx, tx, RejectReasonGaming)
		if err := s.bus.Publish(ctx, event.NewGamingSuspectedEvent(
			tx.UserID, tx.ActivityID,
			s.guard.InWindow(tx.UserID, now),
			int(s.guard.window.Seconds()))); err != nil {
			log.Warn("Failed to publish gaming event", "error", err)
		}
		return nil, fmt.Errorf("%w: submission rate too high", domain.ErrGamingSuspected)
	}

	done, err := s.repo.CountUserRecords(ctx, tx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user records: %w", err)
	}

	sctx := domain.ScoringContext{
		ActivityType:   tx.ActivityData.Type,
		Difficulty:     tx.ActivityData.ScenarioDifficulty,
		UserID:         tx.UserID,
		CustomerType:   contextString(tx.ActivityData, "customer_type"),
		ActivitiesDone: done,
	}

	performance, err := s.scorer.Score(ctx, tx.ActivityData.PerformanceMetrics, sctx)
	if err != nil {
		return nil, fmt.Errorf("failed to score performance: %w", err)
	}

	streaks, err := s.bonuses.UpdateStreaks(ctx, tx.UserID, tx.ActivityID, tx.ActivityData, performance.OverallScore, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update streaks: %w", err)
	}

	bonusResult, err := s.bonuses.Evaluate(ctx, tx.ActivityData.PerformanceMetrics, streaks)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate bonuses: %w", err)
	}

	totalXP, breakdown := calculator.Calculate(tx.ActivityData, *performance, *bonusResult)

	record := &domain.XPRecord{
		ID:         uuid.NewString(),
		UserID:     tx.UserID,
		ActivityID: tx.ActivityID,
		XPAwarded:  totalXP,
		Activity:   tx.ActivityData,
		Breakdown:  breakdown,
		Timestamp:  now,
		Validated:  true,
	}

	if err := s.repo.InsertRecord(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateActivity) {
			s.publishRejection(ctx, tx, RejectReasonDuplicate)
		}
		return nil, fmt.Errorf("failed to persist xp record: %w", err)
	}

	newTotal, err := s.repo.AddToUserTotal(ctx, tx.UserID, totalXP, now)
	if err != nil {
		return nil, fmt.Errorf("failed to update user total: %w", err)
	}
	s.guard.Record(tx.UserID, now)

	metrics.XPAwards.WithLabelValues(string(tx.ActivityData.Type), string(tx.ActivityData.ScenarioDifficulty)).Inc()
	for _, app := range bonusResult.Applications {
		metrics.BonusesApplied.WithLabelValues(app.RuleName).Inc()
	}
	metrics.CalcDuration.Observe(s.now().Sub(start).Seconds())

	if err := s.bus.Publish(ctx, event.NewXPAwardedEvent(
		tx.UserID, tx.ActivityID, string(tx.ActivityData.Type),
		totalXP, performance.OverallScore, performance.Tier.Name)); err != nil {
		log.Warn("Failed to publish award event", "error", err)
	}

	oldLevel := domain.LevelForXP(newTotal - int64(totalXP))
	newLevel := domain.LevelForXP(newTotal)
	if newLevel > oldLevel {
		if err := s.bus.Publish(ctx, event.NewLevelUpEvent(tx.UserID, oldLevel, newLevel, newTotal)); err != nil {
			log.Warn("Failed to publish level up event", "error", err)
		}
	}

	log.Info("XP awarded",
		"user_id", tx.UserID,
		"activity_id", tx.ActivityID,
		"activity_type", tx.ActivityData.Type,
		"xp", totalXP,
		"score", performance.OverallScore,
		"tier", performance.Tier.Name,
		"bonus_xp", bonusResult.TotalBonus,
		"total_xp", newTotal)

	return record, nil
}

// GetCurrentXP returns the running total with the level derived from it
func (s *service) GetCurrentXP(ctx context.Context, userID string) (*domain.CurrentXP, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", domain.ErrInvalidInput)
	}

	total, err := s.repo.GetUserTotal(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return &domain.CurrentXP{
				UserID:        userID,
				XPToNextLevel: domain.XPPerLevel,
			}, nil
		}
		return nil, fmt.Errorf("failed to load user total: %w", err)
	}

	return &domain.CurrentXP{
		UserID:        userID,
		TotalXP:       total.TotalXP,
		Level:         domain.LevelForXP(total.TotalXP),
		XPToNextLevel: domain.XPToNextLevel(total.TotalXP),
	}, nil
}

// GetUserXPSummary assembles the per-user summary view
func (s *service) GetUserXPSummary(ctx context.Context, userID string) (*domain.UserXPSummary, error) {
	current, err := s.GetCurrentXP(ctx, userID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.GetRecentRecords(ctx, userID, defaultRecentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent records: %w", err)
	}
	recent := make([]domain.RecentXP, 0, len(records))
	for _, r := range records {
		recent = append(recent, domain.RecentXP{
			ActivityID:   r.ActivityID,
			ActivityType: r.Activity.Type,
			XPAwarded:    r.XPAwarded,
			Timestamp:    r.Timestamp,
		})
	}

	top, err := s.repo.GetActivityTypeTotals(ctx, userID, defaultTopActivitiesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity totals: %w", err)
	}

	return &domain.UserXPSummary{
		UserID:        userID,
		TotalXP:       current.TotalXP,
		Level:         current.Level,
		XPToNextLevel: current.XPToNextLevel,
		RecentXP:      recent,
		TopActivities: top,
	}, nil
}

// GetLeaderboard returns ranked totals. Ranks are dense over the returned
// page; ties on XP rank by earliest achievement.
func (s *service) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit < 1 {
		return nil, fmt.Errorf("%w: limit must be at least 1", domain.ErrInvalidInput)
	}

	totals, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(totals))
	for i, t := range totals {
		entries = append(entries, domain.LeaderboardEntry{
			Rank:    i + 1,
			UserID:  t.UserID,
			TotalXP: t.TotalXP,
			Level:   domain.LevelForXP(t.TotalXP),
		})
	}
	return entries, nil
}

func (s *service) publishRejection(ctx context.Context, tx domain.XPTransaction, reason string) {
	if err := s.bus.Publish(ctx, event.NewXPRejectedEvent(tx.UserID, tx.ActivityID, reason)); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish rejection event", "error", err)
	}
}

// contextString reads an optional string field from additional context
func contextString(activity domain.ActivityData, key string) string {
	if activity.AdditionalContext == nil {
		return ""
	}
	v, _ := activity.AdditionalContext[key].(string)
	return v
}
