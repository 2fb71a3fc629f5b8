package domain

import "time"

// BonusCategory classifies bonus rules
type BonusCategory string

const (
	BonusCategoryPerformance BonusCategory = "performance"
	BonusCategoryStreak      BonusCategory = "streak"
	BonusCategoryMilestone   BonusCategory = "milestone"
	BonusCategorySpecial     BonusCategory = "special"
)

// ValidBonusCategories is the set of recognized bonus categories
var ValidBonusCategories = map[BonusCategory]bool{
	BonusCategoryPerformance: true,
	BonusCategoryStreak:      true,
	BonusCategoryMilestone:   true,
	BonusCategorySpecial:     true,
}

// Condition sources. Metric conditions read PerformanceMetrics fields,
// streak conditions read the current streak counters.
const (
	ConditionSourceMetric = "metric"
	ConditionSourceStreak = "streak"
)

// BonusCondition is one tagged condition of a bonus rule. All conditions of
// a rule are AND-combined.
type BonusCondition struct {
	Source   string            `json:"source"` // "metric" or "streak"
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    interface{}       `json:"value"`
}

// BonusRule is a conditional fixed-point award layered on top of the
// multiplicative XP calculation
type BonusRule struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    BonusCategory    `json:"category"`
	BonusPoints int              `json:"bonus_points"`
	Conditions  []BonusCondition `json:"conditions"`
	Priority    int              `json:"priority"`
	Active      bool             `json:"active"`
	ValidFrom   time.Time        `json:"valid_from"`
	ValidUntil  *time.Time       `json:"valid_until,omitempty"`
}

// SatisfiedCondition records one condition of an applied bonus with the
// actual value it was evaluated against, for transparency
type SatisfiedCondition struct {
	Condition BonusCondition `json:"condition"`
	Actual    interface{}    `json:"actual"`
}

// BonusApplication records one bonus rule that fired during a calculation
type BonusApplication struct {
	RuleID     string               `json:"rule_id"`
	RuleName   string               `json:"rule_name"`
	Category   BonusCategory        `json:"category"`
	Points     int                  `json:"points"`
	Satisfied  []SatisfiedCondition `json:"satisfied"`
}

// MissedBonus records a near-miss: a rule whose conditions were almost met.
// A rule is a near-miss when every condition except one is satisfied and the
// failing condition is numeric with the actual value within 10% of its
// threshold.
type MissedBonus struct {
	RuleID    string  `json:"rule_id"`
	RuleName  string  `json:"rule_name"`
	Points    int     `json:"points"`
	Field     string  `json:"field"`
	Threshold float64 `json:"threshold"`
	Actual    float64 `json:"actual"`
	Distance  float64 `json:"distance"`
}

// SpecialEvent is a time-windowed event multiplying the rule-based bonus sum
type SpecialEvent struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BonusMultiplier float64  `json:"bonus_multiplier"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
}

// BonusResult is the full output of one bonus evaluation
type BonusResult struct {
	TotalBonus     int                `json:"total_bonus"`
	Applications   []BonusApplication `json:"applications"`
	MissedBonuses  []MissedBonus      `json:"missed_bonuses,omitempty"`
	EventName      string             `json:"event_name,omitempty"`
	EventBonus     int                `json:"event_bonus,omitempty"`
	EventMultiplier float64           `json:"event_multiplier,omitempty"`
}
