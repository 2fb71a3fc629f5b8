package domain

import "time"

// Scoring dimension names. The four core dimensions carry the weights that
// must sum to 1.0; resolution time feeds adjustments, not the weighted sum.
const (
	DimensionTechnicalAccuracy    = "technical_accuracy"
	DimensionCommunicationQuality = "communication_quality"
	DimensionCustomerSatisfaction = "customer_satisfaction"
	DimensionProcessCompliance    = "process_compliance"
)

// CoreDimensions lists the weighted dimensions in canonical order
var CoreDimensions = []string{
	DimensionTechnicalAccuracy,
	DimensionCommunicationQuality,
	DimensionCustomerSatisfaction,
	DimensionProcessCompliance,
}

// WeightSumTolerance is the allowed deviation of the core weight sum from 1.0
const WeightSumTolerance = 0.01

// PerformanceWeights maps dimension name to weight in [0,1]
type PerformanceWeights map[string]float64

// Clone returns an independent copy of the weight map
func (w PerformanceWeights) Clone() PerformanceWeights {
	out := make(PerformanceWeights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// ConditionOperator is an operator of a rule condition
type ConditionOperator string

const (
	OpGreaterOrEqual ConditionOperator = "gte"
	OpLessOrEqual    ConditionOperator = "lte"
	OpEqual          ConditionOperator = "eq"
	OpNotEqual       ConditionOperator = "neq"
	OpContains       ConditionOperator = "contains"
)

// ValidOperators is the set of recognized condition operators
var ValidOperators = map[ConditionOperator]bool{
	OpGreaterOrEqual: true,
	OpLessOrEqual:    true,
	OpEqual:          true,
	OpNotEqual:       true,
	OpContains:       true,
}

// ContextCondition is a tagged condition on the scoring context, interpreted
// by the scorer. Conditions are data, never executable logic.
type ContextCondition struct {
	Field    string            `json:"field"` // "activity_type", "difficulty", "customer_type", "user_id"
	Operator ConditionOperator `json:"operator"`
	Value    interface{}       `json:"value"`
}

// ContextRule adjusts weights additively when its condition matches; the
// scorer renormalizes after all matching rules applied
type ContextRule struct {
	Description       string             `json:"description"`
	Condition         ContextCondition   `json:"condition"`
	WeightAdjustments PerformanceWeights `json:"weight_adjustments"`
}

// WeightConfiguration is one candidate weighting of the core dimensions.
// Exactly one configuration applies per calculation: the highest-priority
// active configuration whose validity window contains now and whose
// applicability condition matches the context.
type WeightConfiguration struct {
	ID            string            `json:"id"`
	Weights       PerformanceWeights `json:"weights"`
	ContextRules  []ContextRule     `json:"context_rules,omitempty"`
	Applicability *ContextCondition `json:"applicability,omitempty"` // nil matches everything
	Priority      int               `json:"priority"`
	Active        bool              `json:"active"`
	ValidFrom     time.Time         `json:"valid_from"`
	ValidUntil    *time.Time        `json:"valid_until,omitempty"`
}

// BalancedConfigID is the reserved fallback configuration applied when no
// configuration matches
const BalancedConfigID = "balanced"

// BalancedWeights returns the reserved equal weighting of the core dimensions
func BalancedWeights() PerformanceWeights {
	return PerformanceWeights{
		DimensionTechnicalAccuracy:    0.25,
		DimensionCommunicationQuality: 0.25,
		DimensionCustomerSatisfaction: 0.25,
		DimensionProcessCompliance:    0.25,
	}
}
