package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/ledger"
	"github.com/skillforge/xp-engine/internal/logger"
)

// ReconcileJob recomputes each running total from the records and corrects
// drift. The records are the source of truth; the totals table is a
// read-optimized projection that can fall behind after a partial failure.
type ReconcileJob struct {
	repo ledger.Repository
}

// NewReconcileJob creates a new reconciliation job
func NewReconcileJob(repo ledger.Repository) *ReconcileJob {
	return &ReconcileJob{repo: repo}
}

// Process walks every running total and overwrites any that disagree with
// the record sum
func (j *ReconcileJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgReconcileStarting)
	start := time.Now()

	totals, err := j.repo.ListUserTotals(ctx)
	if err != nil {
		log.Error(LogMsgReconcileFailed, "error", err)
		return fmt.Errorf("failed to list totals: %w", err)
	}

	fixed := 0
	for _, total := range totals {
		sum, err := j.repo.SumAwardedXP(ctx, total.UserID)
		if err != nil {
			log.Error(LogMsgReconcileFailed, "user_id", total.UserID, "error", err)
			continue
		}
		if sum == total.TotalXP {
			continue
		}

		log.Warn(LogMsgTotalDriftFixed,
			"user_id", total.UserID,
			"stored", total.TotalXP,
			"recomputed", sum)
		if err := j.repo.SetUserTotal(ctx, domain.UserTotal{
			UserID:     total.UserID,
			TotalXP:    sum,
			AchievedAt: total.AchievedAt,
		}); err != nil {
			log.Error(LogMsgReconcileFailed, "user_id", total.UserID, "error", err)
			continue
		}
		fixed++
	}

	log.Info(LogMsgReconcileCompleted,
		"users", len(totals),
		"corrected", fixed,
		"duration", time.Since(start))
	return nil
}
