package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/scorer"
)

type weightConfigRepository struct {
	db *pgxpool.Pool
}

// NewWeightConfigRepository creates a new PostgreSQL weight configuration
// repository
func NewWeightConfigRepository(db *pgxpool.Pool) scorer.Repository {
	return &weightConfigRepository{db: db}
}

// GetWeightConfigurations returns every stored configuration document
func (r *weightConfigRepository) GetWeightConfigurations(ctx context.Context) ([]domain.WeightConfiguration, error) {
	rows, err := r.db.Query(ctx, `SELECT config FROM weight_configurations`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []domain.WeightConfiguration
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
		}
		var cfg domain.WeightConfiguration
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal weight configuration: %w", err)
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

// PutWeightConfiguration inserts or replaces a configuration document
func (r *weightConfigRepository) PutWeightConfiguration(ctx context.Context, cfg domain.WeightConfiguration) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal weight configuration: %w", err)
	}

	query := `
		INSERT INTO weight_configurations (id, config, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id)
		DO UPDATE SET config = $2, updated_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, cfg.ID, raw); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return nil
}
