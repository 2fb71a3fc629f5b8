package bonus

import (
	"fmt"
	"math"
	"strings"

	"github.com/skillforge/xp-engine/internal/domain"
)

// nearMissMargin is the distance-to-threshold fraction that counts a failed
// numeric condition as a near miss
const nearMissMargin = 0.10

// conditionValue is the resolved actual value of a condition's field
type conditionValue struct {
	number  float64
	boolean bool
	text    string
	kind    byte // 'n', 'b', 's'
}

// resolveField looks up a condition's field from the metrics or the current
// streak counters. An unknown source or field is a malformed condition.
func resolveField(cond domain.BonusCondition, metrics domain.PerformanceMetrics, streaks map[domain.StreakType]*domain.StreakData) (conditionValue, error) {
	switch cond.Source {
	case domain.ConditionSourceMetric:
		switch cond.Field {
		case domain.DimensionTechnicalAccuracy:
			return conditionValue{number: metrics.TechnicalAccuracy, kind: 'n'}, nil
		case domain.DimensionCommunicationQuality:
			return conditionValue{number: metrics.CommunicationQuality, kind: 'n'}, nil
		case domain.DimensionCustomerSatisfaction:
			return conditionValue{number: metrics.CustomerSatisfaction, kind: 'n'}, nil
		case domain.DimensionProcessCompliance:
			return conditionValue{number: metrics.ProcessCompliance, kind: 'n'}, nil
		case "resolution_time":
			return conditionValue{number: metrics.ResolutionTime, kind: 'n'}, nil
		case "verification_success":
			return conditionValue{boolean: metrics.VerificationSuccess, kind: 'b'}, nil
		case "first_time_resolution":
			return conditionValue{boolean: metrics.FirstTimeResolution, kind: 'b'}, nil
		case "knowledge_sharing":
			return conditionValue{boolean: metrics.KnowledgeSharing, kind: 'b'}, nil
		default:
			return conditionValue{}, fmt.Errorf("unknown metric field %q", cond.Field)
		}
	case domain.ConditionSourceStreak:
		st := domain.StreakType(cond.Field)
		streak, ok := streaks[st]
		if !ok {
			return conditionValue{}, fmt.Errorf("unknown streak field %q", cond.Field)
		}
		return conditionValue{number: float64(streak.CurrentStreak), kind: 'n'}, nil
	default:
		return conditionValue{}, fmt.Errorf("unknown condition source %q", cond.Source)
	}
}

// evaluateCondition interprets one tagged condition. The returned actual
// value feeds the transparency record of satisfied conditions.
func evaluateCondition(cond domain.BonusCondition, metrics domain.PerformanceMetrics, streaks map[domain.StreakType]*domain.StreakData) (bool, interface{}, error) {
	actual, err := resolveField(cond, metrics, streaks)
	if err != nil {
		return false, nil, err
	}

	switch actual.kind {
	case 'n':
		want, ok := toFloat(cond.Value)
		if !ok {
			return false, actual.number, fmt.Errorf("condition on %s needs a numeric value, got %T", cond.Field, cond.Value)
		}
		return compareNumber(actual.number, cond.Operator, want), actual.number, nil
	case 'b':
		want, ok := cond.Value.(bool)
		if !ok {
			return false, actual.boolean, fmt.Errorf("condition on %s needs a boolean value, got %T", cond.Field, cond.Value)
		}
		switch cond.Operator {
		case domain.OpEqual:
			return actual.boolean == want, actual.boolean, nil
		case domain.OpNotEqual:
			return actual.boolean != want, actual.boolean, nil
		default:
			return false, actual.boolean, fmt.Errorf("operator %q not defined for booleans", cond.Operator)
		}
	default:
		want, ok := cond.Value.(string)
		if !ok {
			return false, actual.text, fmt.Errorf("condition on %s needs a string value, got %T", cond.Field, cond.Value)
		}
		switch cond.Operator {
		case domain.OpEqual:
			return actual.text == want, actual.text, nil
		case domain.OpNotEqual:
			return actual.text != want, actual.text, nil
		case domain.OpContains:
			return strings.Contains(actual.text, want), actual.text, nil
		default:
			return false, actual.text, fmt.Errorf("operator %q not defined for strings", cond.Operator)
		}
	}
}

func compareNumber(actual float64, op domain.ConditionOperator, want float64) bool {
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

// nearMiss reports whether a single failed numeric threshold condition was
// within the near-miss margin. Boolean and equality conditions are never
// near misses.
func nearMiss(cond domain.BonusCondition, actual interface{}) (float64, float64, bool) {
	if cond.Operator != domain.OpGreaterOrEqual && cond.Operator != domain.OpLessOrEqual {
		return 0, 0, false
	}
	actualNum, ok := actual.(float64)
	if !ok {
		return 0, 0, false
	}
	threshold, ok := toFloat(cond.Value)
	if !ok || threshold == 0 {
		return 0, 0, false
	}
	distance := math.Abs(actualNum - threshold)
	if distance <= nearMissMargin*math.Abs(threshold) {
		return threshold, actualNum, true
	}
	return 0, 0, false
}

// ValidateRule checks that every condition of a rule is normalizable. Used
// at rule-write time; evaluation also skips (and logs) rules that fail it so
// one malformed rule never aborts evaluation of the rest.
func ValidateRule(rule domain.BonusRule) error {
	if rule.ID == "" {
		return fmt.Errorf("%w: bonus rule id is required", domain.ErrConfiguration)
	}
	if !domain.ValidBonusCategories[rule.Category] {
		return fmt.Errorf("%w: unknown bonus category %q", domain.ErrConfiguration, rule.Category)
	}
	if len(rule.Conditions) == 0 {
		return fmt.Errorf("%w: bonus rule %s has no conditions", domain.ErrConfiguration, rule.ID)
	}
	var zeroMetrics domain.PerformanceMetrics
	emptyStreaks := emptyStreakSet("")
	for _, cond := range rule.Conditions {
		if !domain.ValidOperators[cond.Operator] {
			return fmt.Errorf("%w: unknown operator %q in rule %s", domain.ErrConfiguration, cond.Operator, rule.ID)
		}
		if _, _, err := evaluateCondition(cond, zeroMetrics, emptyStreaks); err != nil {
			return fmt.Errorf("%w: rule %s: %v", domain.ErrConfiguration, rule.ID, err)
		}
	}
	return nil
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
	default:
		return 0, false
	}
}
