package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/domain"
)

type bonusRepository struct {
	db *pgxpool.Pool
}

// NewBonusRepository creates a new PostgreSQL bonus repository covering
// rules, special events and streak state
func NewBonusRepository(db *pgxpool.Pool) bonus.Repository {
	return &bonusRepository{db: db}
}

// GetBonusRules returns every stored rule document
func (r *bonusRepository) GetBonusRules(ctx context.Context) ([]domain.BonusRule, error) {
	rows, err := r.db.Query(ctx, `SELECT rule FROM bonus_rules`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.BonusRule
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		var rule domain.BonusRule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bonus rule: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// PutBonusRule inserts or replaces a rule document
func (r *bonusRepository) PutBonusRule(ctx context.Context, rule domain.BonusRule) error {
	raw, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal bonus rule: %w", err)
	}

	query := `
		INSERT INTO bonus_rules (id, rule, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id)
		DO UPDATE SET rule = $2, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, rule.ID, raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return nil
}

// GetSpecialEvents returns every stored special event
func (r *bonusRepository) GetSpecialEvents(ctx context.Context) ([]domain.SpecialEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_name, bonus_multiplier, starts_at, ends_at FROM special_events`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.SpecialEvent
	for rows.Next() {
		var evt domain.SpecialEvent
		if err := rows.Scan(&evt.ID, &evt.Name, &evt.BonusMultiplier, &evt.StartsAt, &evt.EndsAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

// GetStreak returns the streak state, zero-valued when never recorded
func (r *bonusRepository) GetStreak(ctx context.Context, userID string, streakType domain.StreakType) (*domain.StreakData, error) {
	query := `
		SELECT user_id, streak_type, current_streak, longest_streak, last_activity, history
		FROM streaks
		WHERE user_id = $1 AND streak_type = $2
	`

	var (
		streak      domain.StreakData
		historyJSON []byte
	)
	err := r.db.QueryRow(ctx, query, userID, streakType).Scan(
		&streak.UserID, &streak.Type, &streak.CurrentStreak,
		&streak.LongestStreak, &streak.LastActivity, &historyJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.StreakData{UserID: userID, Type: streakType}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	if err := json.Unmarshal(historyJSON, &streak.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal streak history: %w", err)
	}
	return &streak, nil
}

// PutStreak stores the streak state
func (r *bonusRepository) PutStreak(ctx context.Context, streak *domain.StreakData) error {
	historyJSON, err := json.Marshal(streak.History)
	if err != nil {
		return fmt.Errorf("failed to marshal streak history: %w", err)
	}

	query := `
		INSERT INTO streaks (user_id, streak_type, current_streak, longest_streak, last_activity, history)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, streak_type)
		DO UPDATE SET current_streak = $3, longest_streak = $4, last_activity = $5, history = $6
	`
	_, err = r.db.Exec(ctx, query,
		streak.UserID, streak.Type, streak.CurrentStreak,
		streak.LongestStreak, streak.LastActivity, historyJSON)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return nil
}
