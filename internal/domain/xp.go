package domain

import "time"

// XPPerLevel is the cumulative XP required per level; level is a pure
// function of total XP, recomputed on read, never stored.
const XPPerLevel = 1000

// LevelForXP returns the level for a cumulative XP total
func LevelForXP(totalXP int64) int {
	if totalXP < 0 {
		return 0
	}
	return int(totalXP / XPPerLevel)
}

// XPToNextLevel returns the XP remaining until the next level
func XPToNextLevel(totalXP int64) int64 {
	if totalXP < 0 {
		return XPPerLevel
	}
	return XPPerLevel - totalXP%XPPerLevel
}

// PerformanceTier is a named score band mapping to a multiplier. Bands are
// contiguous and exhaustive over [0,100].
type PerformanceTier struct {
	Name       string  `json:"name"`
	MinScore   int     `json:"min_score"`
	MaxScore   int     `json:"max_score"`
	Multiplier float64 `json:"multiplier"`
}

// MetricContribution is the weighted contribution of one dimension to the
// overall score, kept for explainability
type MetricContribution struct {
	Dimension    string  `json:"dimension"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// ScoreAdjustment is one bounded additive adjustment applied after weighting
type ScoreAdjustment struct {
	Name   string  `json:"name"`
	Delta  float64 `json:"delta"`
	Reason string  `json:"reason"`
}

// PerformanceResult is the full Performance Scorer output
type PerformanceResult struct {
	OverallScore  int                  `json:"overall_score"` // clamped to [0,100]
	WeightedScore float64              `json:"weighted_score"`
	Tier          PerformanceTier      `json:"tier"`
	ConfigID      string               `json:"config_id"`
	Weights       PerformanceWeights   `json:"weights"`
	Contributions []MetricContribution `json:"contributions"`
	Adjustments   []ScoreAdjustment    `json:"adjustments,omitempty"`
	FiredRules    []string             `json:"fired_rules,omitempty"`
}

// BreakdownStep is one multiplication or addition of the XP calculation,
// carrying its inputs, output and reasoning. The Transparency Builder
// reinterprets these steps and never recomputes them.
type BreakdownStep struct {
	Operation string             `json:"operation"`
	Inputs    map[string]float64 `json:"inputs"`
	Output    float64            `json:"output"`
	Reasoning string             `json:"reasoning"`
}

// XPBreakdown is the structured trace of one XP calculation together with
// the scorer and bonus outputs it was computed from
type XPBreakdown struct {
	BaseXP                int                `json:"base_xp"`
	DifficultyMultiplier  float64            `json:"difficulty_multiplier"`
	PerformanceMultiplier float64            `json:"performance_multiplier"`
	BonusXP               int                `json:"bonus_xp"`
	Steps                 []BreakdownStep    `json:"steps"`
	Performance           PerformanceResult  `json:"performance"`
	Bonuses               BonusResult        `json:"bonuses"`
}

// XPRecord is the durable fact produced by one accepted submission.
// ActivityID is unique per award; a second attempt must fail, never
// silently double-award.
type XPRecord struct {
	ID         string       `json:"id"`
	UserID     string       `json:"user_id"`
	ActivityID string       `json:"activity_id"`
	XPAwarded  int          `json:"xp_awarded"`
	Activity   ActivityData `json:"activity"`
	Breakdown  XPBreakdown  `json:"breakdown"`
	Timestamp  time.Time    `json:"timestamp"`
	Validated  bool         `json:"validated"`
}

// UserTotal is the per-user running aggregate. AchievedAt is the moment the
// current total was reached; it breaks leaderboard ties (earliest first).
type UserTotal struct {
	UserID     string    `json:"user_id"`
	TotalXP    int64     `json:"total_xp"`
	AchievedAt time.Time `json:"achieved_at"`
}

// LeaderboardEntry is one row of the leaderboard view
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"user_id"`
	TotalXP int64  `json:"total_xp"`
	Level   int    `json:"level"`
}

// CurrentXP is the lightweight per-user XP view. Level is recomputed from
// the total on every read.
type CurrentXP struct {
	UserID        string `json:"user_id"`
	TotalXP       int64  `json:"total_xp"`
	Level         int    `json:"level"`
	XPToNextLevel int64  `json:"xp_to_next_level"`
}

// RecentXP is one recent award in a user summary
type RecentXP struct {
	ActivityID   string       `json:"activity_id"`
	ActivityType ActivityType `json:"activity_type"`
	XPAwarded    int          `json:"xp_awarded"`
	Timestamp    time.Time    `json:"timestamp"`
}

// ActivityTypeXP aggregates awarded XP per activity type
type ActivityTypeXP struct {
	ActivityType ActivityType `json:"activity_type"`
	TotalXP      int64        `json:"total_xp"`
	Count        int          `json:"count"`
}

// UserXPSummary is the per-user summary view
type UserXPSummary struct {
	UserID        string           `json:"user_id"`
	TotalXP       int64            `json:"total_xp"`
	Level         int              `json:"level"`
	XPToNextLevel int64            `json:"xp_to_next_level"`
	RecentXP      []RecentXP       `json:"recent_xp"`
	TopActivities []ActivityTypeXP `json:"top_activities"`
}
