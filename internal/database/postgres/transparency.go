package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/transparency"
)

type reportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new PostgreSQL transparency report repository
func NewReportRepository(db *pgxpool.Pool) transparency.Repository {
	return &reportRepository{db: db}
}

// PutReport stores a report document. Reports are write-once; re-generation
// stores a fresh report under a new ID.
func (r *reportRepository) PutReport(ctx context.Context, report *domain.TransparencyReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	query := `
		INSERT INTO transparency_reports (id, user_id, activity_id, record_id, report, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.Exec(ctx, query,
		report.ID, report.UserID, report.ActivityID, report.RecordID, raw, report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}
	return nil
}

// GetReport returns a stored report document by ID
func (r *reportRepository) GetReport(ctx context.Context, reportID string) (*domain.TransparencyReport, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT report FROM transparency_reports WHERE id = $1`, reportID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, reportID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseError, err)
	}

	var report domain.TransparencyReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &report, nil
}
