package transparency

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/skillforge/xp-engine/internal/domain"
)

// Explain answers one query at basic or detailed verbosity, purely from the
// stored report. An unknown report ID surfaces as a not-found miss; no
// partial explanation is ever returned.
func (s *service) Explain(ctx context.Context, reportID string, query domain.ExplanationQuery, verbosity string) (*domain.ExplanationResponse, error) {
	if !domain.ValidExplanationQueries[query] {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidInput, query)
	}
	if verbosity != domain.VerbosityBasic && verbosity != domain.VerbosityDetailed {
		verbosity = domain.VerbosityBasic
	}

	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	resp := &domain.ExplanationResponse{
		ReportID:  report.ID,
		Query:     query,
		Verbosity: verbosity,
	}

	switch query {
	case domain.QueryWhyThisScore:
		resp.Summary = explainScore(report)
		if verbosity == domain.VerbosityDetailed {
			resp.Details = report.Calculation
		}
	case domain.QueryHowToImprove:
		resp.Summary = explainImprovement(report)
		if verbosity == domain.VerbosityDetailed {
			resp.Details = map[string]interface{}{
				"weakest_dimensions": weakestDimensions(report),
				"missed_bonuses":     report.Bonuses.MissedBonuses,
			}
		}
	case domain.QueryBonusDetails:
		resp.Summary = explainBonuses(report)
		if verbosity == domain.VerbosityDetailed {
			resp.Details = report.Bonuses
		}
	case domain.QueryComparisonAnalysis:
		resp.Summary = explainComparison(report)
		if verbosity == domain.VerbosityDetailed {
			resp.Details = report.Comparison
		}
	case domain.QueryWeightRationale:
		resp.Summary = report.Performance.WeightRationale
		if verbosity == domain.VerbosityDetailed {
			resp.Details = map[string]interface{}{
				"contributions":   report.Performance.Contributions,
				"context_factors": report.Performance.ContextFactors,
			}
		}
	}

	return resp, nil
}

func explainScore(report *domain.TransparencyReport) string {
	perf := report.Performance
	return fmt.Sprintf(
		"You earned %d XP. Your overall performance score of %d placed you in the %q tier (x%.2f), and bonuses added %d XP.",
		report.TotalXP, perf.OverallScore, perf.Tier.Name, perf.Tier.Multiplier, report.Bonuses.TotalBonus)
}

func explainImprovement(report *domain.TransparencyReport) string {
	var parts []string

	weakest := weakestDimensions(report)
	if len(weakest) > 0 {
		parts = append(parts, fmt.Sprintf("Your lowest-scoring dimension was %s; improving it raises the weighted score fastest.",
			strings.ReplaceAll(weakest[0], "_", " ")))
	}

	if len(report.Bonuses.MissedBonuses) > 0 {
		missed := report.Bonuses.MissedBonuses[0]
		parts = append(parts, fmt.Sprintf("You nearly earned %q (worth %d XP): %s was %.0f against a threshold of %.0f.",
			missed.RuleName, missed.Points, strings.ReplaceAll(missed.Field, "_", " "), missed.Actual, missed.Threshold))
	}

	if len(parts) == 0 {
		return "Your performance left little room for improvement on this activity. Keep your streaks alive for streak bonuses."
	}
	return strings.Join(parts, " ")
}

func explainBonuses(report *domain.TransparencyReport) string {
	if len(report.Bonuses.Applied) == 0 {
		return "No bonuses applied to this activity."
	}

	names := make([]string, 0, len(report.Bonuses.Applied))
	for _, b := range report.Bonuses.Applied {
		names = append(names, fmt.Sprintf("%q (+%d, %s)", b.RuleName, b.Points, b.Rarity))
	}
	summary := fmt.Sprintf("%d bonus(es) applied for %d XP: %s.",
		len(report.Bonuses.Applied), report.Bonuses.TotalBonus, strings.Join(names, ", "))
	if report.Bonuses.EventName != "" {
		summary += fmt.Sprintf(" Special event %q amplified bonuses by x%.2f.",
			report.Bonuses.EventName, report.Bonuses.EventMultiplier)
	}
	return summary
}

func explainComparison(report *domain.TransparencyReport) string {
	if !report.Comparison.Available {
		return "No comparison data is available for this activity."
	}

	var parts []string
	if report.Comparison.PopulationSize > 0 {
		parts = append(parts, fmt.Sprintf("The population average score is %.1f across %d users.",
			report.Comparison.PopulationAverage, report.Comparison.PopulationSize))
	}
	if report.Comparison.PersonalBest > 0 {
		parts = append(parts, fmt.Sprintf("Your personal best is %d XP and your recent trend is %s.",
			report.Comparison.PersonalBest, report.Comparison.Trend))
	}
	return strings.Join(parts, " ")
}

// weakestDimensions orders the core dimensions by raw value ascending
func weakestDimensions(report *domain.TransparencyReport) []string {
	contributions := make([]domain.MetricContribution, len(report.Performance.Contributions))
	copy(contributions, report.Performance.Contributions)
	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].Value < contributions[j].Value
	})

	out := make([]string, 0, len(contributions))
	for _, c := range contributions {
		out = append(out, c.Dimension)
	}
	return out
}
