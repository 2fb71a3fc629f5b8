package scorer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/skillforge/xp-engine/internal/domain"
)

// resolveConfiguration picks the applicable configuration: highest priority
// among active, time-valid, context-matching candidates. Equal priorities
// tie-break lexicographically by ID so resolution stays deterministic. When
// nothing matches, the reserved balanced configuration applies.
func resolveConfiguration(configs []domain.WeightConfiguration, sctx domain.ScoringContext, now time.Time) domain.WeightConfiguration {
	candidates := make([]domain.WeightConfiguration, 0, len(configs))
	for _, cfg := range configs {
		if !cfg.Active {
			continue
		}
		if now.Before(cfg.ValidFrom) {
			continue
		}
		if cfg.ValidUntil != nil && now.After(*cfg.ValidUntil) {
			continue
		}
		if cfg.Applicability != nil && !matchContextCondition(*cfg.Applicability, sctx) {
			continue
		}
		candidates = append(candidates, cfg)
	}

	if len(candidates) == 0 {
		return balancedConfiguration()
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0]
}

func balancedConfiguration() domain.WeightConfiguration {
	return domain.WeightConfiguration{
		ID:       domain.BalancedConfigID,
		Weights:  domain.BalancedWeights(),
		Priority: 0,
		Active:   true,
	}
}

// matchContextCondition interprets one tagged condition against the scoring
// context. Unknown fields never match.
func matchContextCondition(cond domain.ContextCondition, sctx domain.ScoringContext) bool {
	switch cond.Field {
	case "activity_type":
		return compareString(string(sctx.ActivityType), cond.Operator, cond.Value)
	case "difficulty":
		return compareString(string(sctx.Difficulty), cond.Operator, cond.Value)
	case "customer_type":
		return compareString(sctx.CustomerType, cond.Operator, cond.Value)
	case "user_id":
		return compareString(sctx.UserID, cond.Operator, cond.Value)
	case "activities_done":
		return compareNumber(float64(sctx.ActivitiesDone), cond.Operator, cond.Value)
	default:
		return false
	}
}

func compareString(actual string, op domain.ConditionOperator, expected interface{}) bool {
	want, ok := expected.(string)
	if !ok {
		return false
	}
	switch op {
	case domain.OpEqual:
		return actual == want
	case domain.OpNotEqual:
		return actual != want
	case domain.OpContains:
		return strings.Contains(actual, want)
	default:
		return false
	}
}

func compareNumber(actual float64, op domain.ConditionOperator, expected interface{}) bool {
	want, ok := toFloat(expected)
	if !ok {
		return false
	}
	switch op {
	case domain.OpGreaterOrEqual:
		return actual >= want
	case domain.OpLessOrEqual:
		return actual <= want
	case domain.OpEqual:
		return actual == want
	case domain.OpNotEqual:
		return actual != want
	default:
		return false
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case decimal.Decimal:
		f, _ := n.Float64()
		return f, true
	default:
		return 0, false
	}
}

// applyContextRules applies each matching rule's adjustments additively in
// declaration order and returns the fired rule descriptions. Adjusted
// weights are floored at zero before renormalization.
func applyContextRules(cfg domain.WeightConfiguration, sctx domain.ScoringContext) (domain.PerformanceWeights, []string) {
	weights := cfg.Weights.Clone()
	var fired []string

	for _, rule := range cfg.ContextRules {
		if !matchContextCondition(rule.Condition, sctx) {
			continue
		}
		for dim, delta := range rule.WeightAdjustments {
			weights[dim] += delta
			if weights[dim] < 0 {
				weights[dim] = 0
			}
		}
		fired = append(fired, rule.Description)
	}

	return normalizeWeights(weights), fired
}

// normalizeWeights rescales the core weights so they sum to exactly 1.0.
// Decimal arithmetic keeps the renormalized sum inside the 0.01 tolerance
// regardless of how many adjustments piled up.
func normalizeWeights(weights domain.PerformanceWeights) domain.PerformanceWeights {
	sum := decimal.Zero
	for _, dim := range domain.CoreDimensions {
		sum = sum.Add(decimal.NewFromFloat(weights[dim]))
	}
	if sum.IsZero() {
		return domain.BalancedWeights()
	}

	out := make(domain.PerformanceWeights, len(domain.CoreDimensions))
	for _, dim := range domain.CoreDimensions {
		w := decimal.NewFromFloat(weights[dim]).Div(sum)
		out[dim], _ = w.Round(6).Float64()
	}
	return out
}

// ValidateConfiguration enforces the configuration invariants at write time:
// known dimensions, weights in [0,1] summing to 1.0 within tolerance, and
// interpretable conditions. Calculation time never sees a bad configuration.
func ValidateConfiguration(cfg domain.WeightConfiguration) error {
	if cfg.ID == "" {
		return fmt.Errorf("%w: configuration id is required", domain.ErrConfiguration)
	}

	sum := decimal.Zero
	for _, dim := range domain.CoreDimensions {
		w, ok := cfg.Weights[dim]
		if !ok {
			return fmt.Errorf("%w: missing weight for %s", domain.ErrConfiguration, dim)
		}
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: weight for %s must be in [0,1], got %.4f", domain.ErrConfiguration, dim, w)
		}
		sum = sum.Add(decimal.NewFromFloat(w))
	}

	tolerance := decimal.NewFromFloat(domain.WeightSumTolerance)
	if sum.Sub(decimal.NewFromInt(1)).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("%w: %s, got %s", domain.ErrConfiguration, domain.ErrMsgWeightSum, sum)
	}

	for _, rule := range cfg.ContextRules {
		if !domain.ValidOperators[rule.Condition.Operator] {
			return fmt.Errorf("%w: unknown operator %q in context rule", domain.ErrConfiguration, rule.Condition.Operator)
		}
	}
	if cfg.Applicability != nil && !domain.ValidOperators[cfg.Applicability.Operator] {
		return fmt.Errorf("%w: unknown operator %q in applicability condition", domain.ErrConfiguration, cfg.Applicability.Operator)
	}

	return nil
}
