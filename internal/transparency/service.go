package transparency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/skillforge/xp-engine/internal/analytics"
	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/logger"
)

// Service defines the Transparency/Audit builder business logic
type Service interface {
	// Generate builds, persists and returns the report for one awarded
	// activity. Built on demand, never eagerly on the award path.
	Generate(ctx context.Context, userID, activityID string) (*domain.TransparencyReport, error)

	// GetReport returns a stored report by ID
	GetReport(ctx context.Context, reportID string) (*domain.TransparencyReport, error)

	// Explain answers a query purely from the stored report
	Explain(ctx context.Context, reportID string, query domain.ExplanationQuery, verbosity string) (*domain.ExplanationResponse, error)
}

type service struct {
	repo     Repository
	records  Records
	provider analytics.Provider
	bus      event.Bus
	cache    *expirable.LRU[string, *domain.TransparencyReport]
	now      func() time.Time
}

// NewService creates a new transparency service. Reports are regenerable
// views, so they sit in an expirable LRU in front of the repository.
func NewService(repo Repository, records Records, provider analytics.Provider, bus event.Bus, cacheSize int, cacheTTL time.Duration) Service {
	if provider == nil {
		provider = analytics.NoopProvider{}
	}
	return &service{
		repo:     repo,
		records:  records,
		provider: provider,
		bus:      bus,
		cache:    expirable.NewLRU[string, *domain.TransparencyReport](cacheSize, nil, cacheTTL),
		now:      time.Now,
	}
}

// Generate assembles the five report sections from the record's stored
// breakdown. The calculator's trace is restated, never recomputed.
func (s *service) Generate(ctx context.Context, userID, activityID string) (*domain.TransparencyReport, error) {
	log := logger.FromContext(ctx)

	record, err := s.records.GetRecordByActivity(ctx, userID, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load xp record: %w", err)
	}

	now := s.now()
	report := &domain.TransparencyReport{
		ID:          uuid.NewString(),
		UserID:      record.UserID,
		ActivityID:  record.ActivityID,
		RecordID:    record.ID,
		TotalXP:     record.XPAwarded,
		GeneratedAt: now,
	}

	var trail []domain.AuditEntry
	appendAudit := func(action string, parameters map[string]interface{}, result interface{}) {
		trail = append(trail, domain.AuditEntry{
			Timestamp:  now,
			Action:     action,
			Parameters: parameters,
			Result:     result,
			Checksum:   auditChecksum(action, parameters, result),
		})
	}

	report.Calculation = buildCalculation(record.Breakdown)
	appendAudit("restate_calculation",
		map[string]interface{}{"record_id": record.ID},
		map[string]interface{}{"steps": len(report.Calculation), "total_xp": record.XPAwarded})

	report.Performance = buildPerformance(record.Breakdown.Performance)
	appendAudit("explain_performance",
		map[string]interface{}{"config_id": record.Breakdown.Performance.ConfigID},
		map[string]interface{}{"overall_score": record.Breakdown.Performance.OverallScore, "tier": record.Breakdown.Performance.Tier.Name})

	report.Bonuses = buildBonuses(record.Breakdown.Bonuses)
	appendAudit("explain_bonuses",
		map[string]interface{}{"applied": len(report.Bonuses.Applied)},
		map[string]interface{}{"total_bonus": report.Bonuses.TotalBonus})

	report.Comparison = s.buildComparison(ctx, record)
	appendAudit("compare",
		map[string]interface{}{"user_id": record.UserID, "activity_type": string(record.Activity.Type)},
		map[string]interface{}{"available": report.Comparison.Available})

	report.Fairness = buildFairness(record.Breakdown)
	report.Fairness.AuditTrail = trail

	if err := s.repo.PutReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store transparency report: %w", err)
	}
	s.cache.Add(report.ID, report)

	if s.bus != nil {
		evt := event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.ReportGenerated,
			Payload: map[string]interface{}{
				"report_id":   report.ID,
				"user_id":     record.UserID,
				"activity_id": record.ActivityID,
			},
		}
		if err := s.bus.Publish(ctx, evt); err != nil {
			log.Warn("Failed to publish report event", "error", err)
		}
	}

	log.Info("Transparency report generated",
		"report_id", report.ID,
		"user_id", record.UserID,
		"activity_id", record.ActivityID)

	return report, nil
}

// GetReport returns a stored report, serving from cache when possible
func (s *service) GetReport(ctx context.Context, reportID string) (*domain.TransparencyReport, error) {
	if cached, ok := s.cache.Get(reportID); ok {
		return cached, nil
	}

	report, err := s.repo.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(reportID, report)
	return report, nil
}

// buildCalculation restates the calculator steps verbatim with step numbers
func buildCalculation(breakdown domain.XPBreakdown) []domain.CalculationStep {
	out := make([]domain.CalculationStep, 0, len(breakdown.Steps))
	for i, step := range breakdown.Steps {
		out = append(out, domain.CalculationStep{
			Step:      i + 1,
			Operation: step.Operation,
			Inputs:    step.Inputs,
			Output:    step.Output,
			Reasoning: step.Reasoning,
		})
	}
	return out
}

func buildPerformance(perf domain.PerformanceResult) domain.PerformanceExplanation {
	rationale := fmt.Sprintf(
		"Weight configuration %q weighted the four core dimensions; the weighted sum %.2f became score %d after adjustments.",
		perf.ConfigID, perf.WeightedScore, perf.OverallScore)

	factors := make([]string, 0, len(perf.FiredRules)+len(perf.Adjustments))
	factors = append(factors, perf.FiredRules...)
	for _, adj := range perf.Adjustments {
		factors = append(factors, fmt.Sprintf("%s (%+.0f): %s", adj.Name, adj.Delta, adj.Reason))
	}

	return domain.PerformanceExplanation{
		OverallScore:    perf.OverallScore,
		Tier:            perf.Tier,
		ConfigID:        perf.ConfigID,
		Contributions:   perf.Contributions,
		Adjustments:     perf.Adjustments,
		ContextFactors:  factors,
		WeightRationale: rationale,
	}
}

func buildBonuses(bonuses domain.BonusResult) domain.BonusExplanation {
	applied := make([]domain.BonusDetail, 0, len(bonuses.Applications))
	for _, app := range bonuses.Applications {
		applied = append(applied, domain.BonusDetail{
			RuleID:   app.RuleID,
			RuleName: app.RuleName,
			Category: app.Category,
			Points:   app.Points,
			Rarity:   domain.RarityForPoints(app.Points),
			Criteria: app.Satisfied,
		})
	}
	return domain.BonusExplanation{
		TotalBonus:      bonuses.TotalBonus,
		Applied:         applied,
		MissedBonuses:   bonuses.MissedBonuses,
		EventName:       bonuses.EventName,
		EventBonus:      bonuses.EventBonus,
		EventMultiplier: bonuses.EventMultiplier,
	}
}

// buildComparison queries the analytics collaborator; on any miss the
// section degrades to "no comparison data" rather than failing the report
func (s *service) buildComparison(ctx context.Context, record *domain.XPRecord) domain.ComparativeAnalysis {
	population, popErr := s.provider.PopulationStats(ctx, record.Activity.Type)
	history, histErr := s.provider.UserHistory(ctx, record.UserID)

	if popErr != nil && histErr != nil {
		return domain.ComparativeAnalysis{
			Available: false,
			Message:   "no comparison data",
		}
	}

	out := domain.ComparativeAnalysis{Available: true}
	if popErr == nil {
		out.PopulationAverage = population.AverageScore
		out.PopulationRank = population.Rank
		out.PopulationSize = population.Size
	}
	if histErr == nil {
		out.PersonalAverage = history.AverageXP
		out.PersonalBest = history.BestXP
		out.Trend = history.Trend
	}
	return out
}

// buildFairness derives the report's self-assessment scores from the stored
// breakdown. Consistency is 1.0 by construction: the explanation restates
// the calculator trace instead of recomputing it.
func buildFairness(breakdown domain.XPBreakdown) domain.FairnessMetrics {
	weights := breakdown.Performance.Weights
	minW, maxW := 1.0, 0.0
	for _, dim := range domain.CoreDimensions {
		w := weights[dim]
		if w < minW {
			minW = w
		}
		if w > maxW {
			maxW = w
		}
	}

	explained := 0
	for _, step := range breakdown.Steps {
		if step.Reasoning != "" {
			explained++
		}
	}
	explainability := 1.0
	if len(breakdown.Steps) > 0 {
		explainability = float64(explained) / float64(len(breakdown.Steps))
	}

	return domain.FairnessMetrics{
		// A flat weighting scores 1.0; the score drops with weight spread
		BiasScore:           1.0 - (maxW - minW),
		ConsistencyScore:    1.0,
		ExplainabilityScore: explainability,
	}
}
