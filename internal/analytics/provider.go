// Package analytics is the boundary to the external peer-comparison
// collaborator. The engine only consumes aggregates; when none are
// available the transparency report degrades instead of failing.
package analytics

import (
	"context"
	"errors"

	"github.com/skillforge/xp-engine/internal/domain"
)

// ErrNoData signals that no comparison aggregates are available
var ErrNoData = errors.New("no comparison data available")

// PopulationStats are population-level aggregates for one activity type
type PopulationStats struct {
	AverageScore float64 `json:"average_score"`
	Size         int     `json:"size"`
	Rank         int     `json:"rank"` // rank of the subject user within the population
}

// UserHistory are the subject user's own historical aggregates
type UserHistory struct {
	AverageXP float64 `json:"average_xp"`
	BestXP    int     `json:"best_xp"`
	Trend     string  `json:"trend"` // "improving", "steady", "declining"
}

// Provider supplies comparison aggregates to the transparency builder
type Provider interface {
	PopulationStats(ctx context.Context, activityType domain.ActivityType) (*PopulationStats, error)
	UserHistory(ctx context.Context, userID string) (*UserHistory, error)
}

// NoopProvider is used when no analytics collaborator is wired; every call
// reports ErrNoData
type NoopProvider struct{}

func (NoopProvider) PopulationStats(ctx context.Context, activityType domain.ActivityType) (*PopulationStats, error) {
	return nil, ErrNoData
}

func (NoopProvider) UserHistory(ctx context.Context, userID string) (*UserHistory, error) {
	return nil, ErrNoData
}
