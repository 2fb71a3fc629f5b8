package ledger

import (
	"context"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
)

// Repository defines the persistence interface for XP records and per-user
// totals
type Repository interface {
	// InsertRecord persists one accepted award. Inserting a second record
	// for the same (user, activity) pair returns ErrDuplicateActivity.
	InsertRecord(ctx context.Context, record *domain.XPRecord) error

	// GetRecordByActivity returns the record of one awarded activity, or
	// ErrRecordNotFound
	GetRecordByActivity(ctx context.Context, userID, activityID string) (*domain.XPRecord, error)

	// CountUserRecords returns the lifetime number of accepted awards
	CountUserRecords(ctx context.Context, userID string) (int, error)

	// CountRecentRecords returns the number of accepted awards since the
	// given instant, for the gaming guard
	CountRecentRecords(ctx context.Context, userID string, since time.Time) (int, error)

	// GetRecentRecords returns the newest accepted awards, newest first
	GetRecentRecords(ctx context.Context, userID string, limit int) ([]domain.XPRecord, error)

	// GetActivityTypeTotals aggregates awarded XP per activity type,
	// highest total first
	GetActivityTypeTotals(ctx context.Context, userID string, limit int) ([]domain.ActivityTypeXP, error)

	// GetUserTotal returns the running total, or ErrUserNotFound before the
	// first award
	GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error)

	// AddToUserTotal atomically adds delta to the running total and stamps
	// the moment it was reached, returning the new total
	AddToUserTotal(ctx context.Context, userID string, delta int, at time.Time) (int64, error)

	// SetUserTotal overwrites the running total, for reconciliation
	SetUserTotal(ctx context.Context, total domain.UserTotal) error

	// ListUserTotals returns every running total
	ListUserTotals(ctx context.Context) ([]domain.UserTotal, error)

	// SumAwardedXP recomputes the total from the records, the source of
	// truth the reconciler checks the running total against
	SumAwardedXP(ctx context.Context, userID string) (int64, error)

	// GetLeaderboard returns the top totals ordered by XP descending,
	// earliest AchievedAt first on ties
	GetLeaderboard(ctx context.Context, limit int) ([]domain.UserTotal, error)
}
