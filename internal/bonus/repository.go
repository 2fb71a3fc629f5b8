package bonus

import (
	"context"

	"github.com/skillforge/xp-engine/internal/domain"
)

// Repository defines the persistence interface for bonus rules, special
// events and per-user streak state
type Repository interface {
	GetBonusRules(ctx context.Context) ([]domain.BonusRule, error)
	PutBonusRule(ctx context.Context, rule domain.BonusRule) error

	GetSpecialEvents(ctx context.Context) ([]domain.SpecialEvent, error)

	GetStreak(ctx context.Context, userID string, streakType domain.StreakType) (*domain.StreakData, error)
	PutStreak(ctx context.Context, streak *domain.StreakData) error
}
