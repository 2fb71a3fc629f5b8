package domain

import "time"

// RarityTier classifies a bonus by its point value for display
type RarityTier string

const (
	RarityCommon    RarityTier = "common"
	RarityUncommon  RarityTier = "uncommon"
	RarityRare      RarityTier = "rare"
	RarityLegendary RarityTier = "legendary"
)

// RarityForPoints derives the rarity tier of a bonus from its point value
func RarityForPoints(points int) RarityTier {
	switch {
	case points >= 25:
		return RarityLegendary
	case points >= 15:
		return RarityRare
	case points >= 8:
		return RarityUncommon
	default:
		return RarityCommon
	}
}

// CalculationStep restates one calculator breakdown step for display
type CalculationStep struct {
	Step      int                `json:"step"`
	Operation string             `json:"operation"`
	Inputs    map[string]float64 `json:"inputs"`
	Output    float64            `json:"output"`
	Reasoning string             `json:"reasoning"`
}

// PerformanceExplanation explains the weighted score
type PerformanceExplanation struct {
	OverallScore   int                  `json:"overall_score"`
	Tier           PerformanceTier      `json:"tier"`
	ConfigID       string               `json:"config_id"`
	Contributions  []MetricContribution `json:"contributions"`
	Adjustments    []ScoreAdjustment    `json:"adjustments,omitempty"`
	ContextFactors []string             `json:"context_factors,omitempty"`
	WeightRationale string              `json:"weight_rationale"`
}

// BonusDetail explains one applied bonus
type BonusDetail struct {
	RuleID    string               `json:"rule_id"`
	RuleName  string               `json:"rule_name"`
	Category  BonusCategory        `json:"category"`
	Points    int                  `json:"points"`
	Rarity    RarityTier           `json:"rarity"`
	Criteria  []SatisfiedCondition `json:"criteria"`
}

// BonusExplanation explains applied and almost-applied bonuses
type BonusExplanation struct {
	TotalBonus      int           `json:"total_bonus"`
	Applied         []BonusDetail `json:"applied"`
	MissedBonuses   []MissedBonus `json:"missed_bonuses,omitempty"`
	EventName       string        `json:"event_name,omitempty"`
	EventBonus      int           `json:"event_bonus,omitempty"`
	EventMultiplier float64       `json:"event_multiplier,omitempty"`
}

// ComparativeAnalysis compares the user against the population and their own
// history. Sourced from external analytics; degrades to Available=false.
type ComparativeAnalysis struct {
	Available         bool    `json:"available"`
	Message           string  `json:"message,omitempty"`
	PopulationAverage float64 `json:"population_average,omitempty"`
	PopulationRank    int     `json:"population_rank,omitempty"`
	PopulationSize    int     `json:"population_size,omitempty"`
	PersonalAverage   float64 `json:"personal_average,omitempty"`
	PersonalBest      int     `json:"personal_best,omitempty"`
	Trend             string  `json:"trend,omitempty"`
}

// AuditEntry is one append-only entry of the report's audit trail. The
// checksum fingerprints parameters+result to detect retroactive tampering;
// it is not a security-grade integrity guarantee.
type AuditEntry struct {
	Timestamp  time.Time              `json:"timestamp"`
	Action     string                 `json:"action"`
	Parameters map[string]interface{} `json:"parameters"`
	Result     interface{}            `json:"result"`
	Checksum   string                 `json:"checksum"`
}

// FairnessMetrics carries the report's self-assessment scores plus the
// audit trail
type FairnessMetrics struct {
	BiasScore           float64      `json:"bias_score"`
	ConsistencyScore    float64      `json:"consistency_score"`
	ExplainabilityScore float64      `json:"explainability_score"`
	AuditTrail          []AuditEntry `json:"audit_trail"`
}

// TransparencyReport is the durable explanation artifact of one calculation.
// Never mutated after creation; superseded by a new report for a new
// calculation.
type TransparencyReport struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	ActivityID  string                 `json:"activity_id"`
	RecordID    string                 `json:"record_id"`
	TotalXP     int                    `json:"total_xp"`
	Calculation []CalculationStep      `json:"calculation"`
	Performance PerformanceExplanation `json:"performance"`
	Bonuses     BonusExplanation       `json:"bonuses"`
	Comparison  ComparativeAnalysis    `json:"comparison"`
	Fairness    FairnessMetrics        `json:"fairness"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// ExplanationQuery identifies a query-driven explanation
type ExplanationQuery string

const (
	QueryWhyThisScore       ExplanationQuery = "why_this_score"
	QueryHowToImprove       ExplanationQuery = "how_to_improve"
	QueryBonusDetails       ExplanationQuery = "bonus_details"
	QueryComparisonAnalysis ExplanationQuery = "comparison_analysis"
	QueryWeightRationale    ExplanationQuery = "weight_rationale"
)

// ValidExplanationQueries is the set of recognized queries
var ValidExplanationQueries = map[ExplanationQuery]bool{
	QueryWhyThisScore:       true,
	QueryHowToImprove:       true,
	QueryBonusDetails:       true,
	QueryComparisonAnalysis: true,
	QueryWeightRationale:    true,
}

// Verbosity levels for explanations
const (
	VerbosityBasic    = "basic"
	VerbosityDetailed = "detailed"
)

// ExplanationResponse answers one explanation query purely from a stored
// report
type ExplanationResponse struct {
	ReportID  string           `json:"report_id"`
	Query     ExplanationQuery `json:"query"`
	Verbosity string           `json:"verbosity"`
	Summary   string           `json:"summary"`
	Details   interface{}      `json:"details,omitempty"`
}
