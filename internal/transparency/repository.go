package transparency

import (
	"context"

	"github.com/skillforge/xp-engine/internal/domain"
)

// Repository defines the persistence interface for transparency reports.
// Reports are write-once; a new calculation supersedes with a new report.
type Repository interface {
	PutReport(ctx context.Context, report *domain.TransparencyReport) error
	GetReport(ctx context.Context, reportID string) (*domain.TransparencyReport, error)
}

// Records is the read-side of the XP ledger the builder consumes
type Records interface {
	GetRecordByActivity(ctx context.Context, userID, activityID string) (*domain.XPRecord, error)
}
