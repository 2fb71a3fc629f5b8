// Package calculator computes the total XP of one activity as a pure,
// deterministic function of its inputs. The returned breakdown is the single
// source of truth the transparency builder reinterprets; nothing downstream
// recomputes the number, so the displayed explanation can never diverge from
// the awarded value.
package calculator

import (
	"fmt"
	"math"

	"github.com/skillforge/xp-engine/internal/domain"
)

// baseXPTable is the fixed point value per activity type, before any
// multiplier
var baseXPTable = map[domain.ActivityType]int{
	domain.ActivityTicketCompletion:      20,
	domain.ActivityVerification:          15,
	domain.ActivityDocumentation:         10,
	domain.ActivityCustomerCommunication: 10,
	domain.ActivityLearningProgress:      15,
	domain.ActivityKnowledgeSearch:       5,
}

// difficultyTable is the fixed multiplier per scenario difficulty
var difficultyTable = map[domain.Difficulty]float64{
	domain.DifficultyStarter:      1.0,
	domain.DifficultyIntermediate: 1.5,
	domain.DifficultyAdvanced:     2.0,
}

// BaseXP returns the base point value of an activity type
func BaseXP(activityType domain.ActivityType) int {
	return baseXPTable[activityType]
}

// DifficultyMultiplier returns the fixed multiplier of a difficulty
func DifficultyMultiplier(difficulty domain.Difficulty) float64 {
	return difficultyTable[difficulty]
}

// Calculate computes
//
//	totalXP = round(baseXP x difficultyMultiplier x performanceMultiplier) + bonusXP
//
// and emits one breakdown step per operation, each carrying its inputs,
// output and reasoning. Inputs must be validated; the function is total for
// all validated inputs.
func Calculate(activity domain.ActivityData, performance domain.PerformanceResult, bonuses domain.BonusResult) (int, domain.XPBreakdown) {
	baseXP := baseXPTable[activity.Type]
	difficultyMult := difficultyTable[activity.ScenarioDifficulty]
	perfMult := performance.Tier.Multiplier

	steps := make([]domain.BreakdownStep, 0, 5+len(bonuses.Applications))

	steps = append(steps, domain.BreakdownStep{
		Operation: "base_xp",
		Inputs:    map[string]float64{},
		Output:    float64(baseXP),
		Reasoning: fmt.Sprintf("Activity type %q is worth %d base XP.", activity.Type, baseXP),
	})

	afterDifficulty := float64(baseXP) * difficultyMult
	steps = append(steps, domain.BreakdownStep{
		Operation: "difficulty_multiplier",
		Inputs:    map[string]float64{"base_xp": float64(baseXP), "multiplier": difficultyMult},
		Output:    afterDifficulty,
		Reasoning: fmt.Sprintf("A %s scenario multiplies base XP by %.2f.", activity.ScenarioDifficulty, difficultyMult),
	})

	afterPerformance := afterDifficulty * perfMult
	steps = append(steps, domain.BreakdownStep{
		Operation: "performance_multiplier",
		Inputs:    map[string]float64{"xp": afterDifficulty, "multiplier": perfMult},
		Output:    afterPerformance,
		Reasoning: fmt.Sprintf("An overall score of %d lands in the %q tier, multiplying XP by %.2f.",
			performance.OverallScore, performance.Tier.Name, perfMult),
	})

	rounded := int(math.Round(afterPerformance))
	steps = append(steps, domain.BreakdownStep{
		Operation: "round",
		Inputs:    map[string]float64{"xp": afterPerformance},
		Output:    float64(rounded),
		Reasoning: fmt.Sprintf("The multiplied value %.2f rounds to %d XP.", afterPerformance, rounded),
	})

	for _, app := range bonuses.Applications {
		steps = append(steps, domain.BreakdownStep{
			Operation: "bonus",
			Inputs:    map[string]float64{"points": float64(app.Points)},
			Output:    float64(app.Points),
			Reasoning: fmt.Sprintf("Bonus %q adds %d XP.", app.RuleName, app.Points),
		})
	}
	if bonuses.EventBonus > 0 {
		steps = append(steps, domain.BreakdownStep{
			Operation: "event_bonus",
			Inputs:    map[string]float64{"rule_bonus": float64(bonuses.TotalBonus - bonuses.EventBonus), "multiplier": bonuses.EventMultiplier},
			Output:    float64(bonuses.EventBonus),
			Reasoning: fmt.Sprintf("Special event %q multiplies bonuses by %.2f, adding %d XP.",
				bonuses.EventName, bonuses.EventMultiplier, bonuses.EventBonus),
		})
	}

	total := rounded + bonuses.TotalBonus
	steps = append(steps, domain.BreakdownStep{
		Operation: "total",
		Inputs:    map[string]float64{"xp": float64(rounded), "bonus_xp": float64(bonuses.TotalBonus)},
		Output:    float64(total),
		Reasoning: fmt.Sprintf("%d XP plus %d bonus XP totals %d XP.", rounded, bonuses.TotalBonus, total),
	})

	breakdown := domain.XPBreakdown{
		BaseXP:                baseXP,
		DifficultyMultiplier:  difficultyMult,
		PerformanceMultiplier: perfMult,
		BonusXP:               bonuses.TotalBonus,
		Steps:                 steps,
		Performance:           performance,
		Bonuses:               bonuses,
	}

	return total, breakdown
}
