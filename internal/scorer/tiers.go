package scorer

import "github.com/skillforge/xp-engine/internal/domain"

// tierTable maps clamped scores to performance tiers. Bands are contiguous
// and exhaustive over [0,100]; the multiplier feeds the XP calculator.
var tierTable = []domain.PerformanceTier{
	{Name: "Needs Improvement", MinScore: 0, MaxScore: 59, Multiplier: 0.5},
	{Name: "Developing", MinScore: 60, MaxScore: 69, Multiplier: 0.8},
	{Name: "Good", MinScore: 70, MaxScore: 84, Multiplier: 1.0},
	{Name: "Excellent", MinScore: 85, MaxScore: 94, Multiplier: 1.25},
	{Name: "Outstanding", MinScore: 95, MaxScore: 100, Multiplier: 1.5},
}

// TierForScore maps a clamped score to its tier band
func TierForScore(score int) domain.PerformanceTier {
	for _, t := range tierTable {
		if score >= t.MinScore && score <= t.MaxScore {
			return t
		}
	}
	// Unreachable for clamped input; the table covers [0,100]
	return tierTable[0]
}

// Tiers returns a copy of the tier table for display purposes
func Tiers() []domain.PerformanceTier {
	out := make([]domain.PerformanceTier, len(tierTable))
	copy(out, tierTable)
	return out
}
