package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/ledger"
)

// pgUniqueViolation is the postgres error code for unique constraint hits
const pgUniqueViolation = "23505"

type ledgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new PostgreSQL XP ledger repository
func NewLedgerRepository(db *pgxpool.Pool) ledger.Repository {
	return &ledgerRepository{db: db}
}

// InsertRecord persists one accepted award. The unique (user_id,
// activity_id) constraint turns replays into ErrDuplicateActivity.
func (r *ledgerRepository) InsertRecord(ctx context.Context, record *domain.XPRecord) error {
	query := `
		INSERT INTO xp_records (id, user_id, activity_id, xp_awarded, activity, breakdown, validated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	activityJSON, err := json.Marshal(record.Activity)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}
	breakdownJSON, err := json.Marshal(record.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	_, err = r.db.Exec(ctx, query,
		record.ID, record.UserID, record.ActivityID, record.XPAwarded,
		activityJSON, breakdownJSON, record.Validated, record.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: activity %s", domain.ErrDuplicateActivity, record.ActivityID)
		}
		return fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return nil
}

// GetRecordByActivity returns the record of one awarded activity
func (r *ledgerRepository) GetRecordByActivity(ctx context.Context, userID, activityID string) (*domain.XPRecord, error) {
	query := `
		SELECT id, user_id, activity_id, xp_awarded, activity, breakdown, validated, created_at
		FROM xp_records
		WHERE user_id = $1 AND activity_id = $2
	`

	record, err := scanRecord(r.db.QueryRow(ctx, query, userID, activityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", domain.ErrRecordNotFound, activityID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return record, nil
}

// CountUserRecords returns the lifetime number of accepted awards
func (r *ledgerRepository) CountUserRecords(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM xp_records WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return count, nil
}

// CountRecentRecords returns the number of accepted awards since the given
// instant
func (r *ledgerRepository) CountRecentRecords(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM xp_records WHERE user_id = $1 AND created_at > $2`,
		userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return count, nil
}

// GetRecentRecords returns the newest accepted awards, newest first
func (r *ledgerRepository) GetRecentRecords(ctx context.Context, userID string, limit int) ([]domain.XPRecord, error) {
	query := `
		SELECT id, user_id, activity_id, xp_awarded, activity, breakdown, validated, created_at
		FROM xp_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.XPRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		out = append(out, *record)
	}
	return out, rows.Err()
}

// GetActivityTypeTotals aggregates awarded XP per activity type
func (r *ledgerRepository) GetActivityTypeTotals(ctx context.Context, userID string, limit int) ([]domain.ActivityTypeXP, error) {
	query := `
		SELECT activity->>'type', SUM(xp_awarded)::BIGINT, COUNT(*)
		FROM xp_records
		WHERE user_id = $1
		GROUP BY activity->>'type'
		ORDER BY SUM(xp_awarded) DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.ActivityTypeXP
	for rows.Next() {
		var agg domain.ActivityTypeXP
		if err := rows.Scan(&agg.ActivityType, &agg.TotalXP, &agg.Count); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

// GetUserTotal returns the running total of one user
func (r *ledgerRepository) GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error) {
	var total domain.UserTotal
	err := r.db.QueryRow(ctx,
		`SELECT user_id, total_xp, achieved_at FROM user_totals WHERE user_id = $1`,
		userID).Scan(&total.UserID, &total.TotalXP, &total.AchievedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return &total, nil
}

// AddToUserTotal atomically adds delta to the running total
func (r *ledgerRepository) AddToUserTotal(ctx context.Context, userID string, delta int, at time.Time) (int64, error) {
	query := `
		INSERT INTO user_totals (user_id, total_xp, achieved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET total_xp = user_totals.total_xp + $2, achieved_at = $3
		RETURNING total_xp
	`

	var newTotal int64
	if err := r.db.QueryRow(ctx, query, userID, delta, at).Scan(&newTotal); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return newTotal, nil
}

// SetUserTotal overwrites the running total, for reconciliation
func (r *ledgerRepository) SetUserTotal(ctx context.Context, total domain.UserTotal) error {
	query := `
		INSERT INTO user_totals (user_id, total_xp, achieved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET total_xp = $2, achieved_at = $3
	`

	if _, err := r.db.Exec(ctx, query, total.UserID, total.TotalXP, total.AchievedAt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return nil
}

// ListUserTotals returns every running total
func (r *ledgerRepository) ListUserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, total_xp, achieved_at FROM user_totals`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.UserTotal
	for rows.Next() {
		var total domain.UserTotal
		if err := rows.Scan(&total.UserID, &total.TotalXP, &total.AchievedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		out = append(out, total)
	}
	return out, rows.Err()
}

// SumAwardedXP recomputes the total from the records
func (r *ledgerRepository) SumAwardedXP(ctx context.Context, userID string) (int64, error) {
	var sum int64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(xp_awarded), 0)::BIGINT FROM xp_records WHERE user_id = $1`,
		userID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return sum, nil
}

// GetLeaderboard returns the top totals ordered by XP descending, earliest
// achievement first on ties
func (r *ledgerRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.UserTotal, error) {
	query := `
		SELECT user_id, total_xp, achieved_at
		FROM user_totals
		ORDER BY total_xp DESC, achieved_at ASC, user_id ASC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.UserTotal
	for rows.Next() {
		var total domain.UserTotal
		if err := rows.Scan(&total.UserID, &total.TotalXP, &total.AchievedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		out = append(out, total)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*domain.XPRecord, error) {
	var (
		record        domain.XPRecord
		activityJSON  []byte
		breakdownJSON []byte
	)
	err := row.Scan(&record.ID, &record.UserID, &record.ActivityID, &record.XPAwarded,
		&activityJSON, &breakdownJSON, &record.Validated, &record.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(activityJSON, &record.Activity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &record.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
	}
	return &record, nil
}
