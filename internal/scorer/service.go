package scorer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/logger"
)

// Bounded additive adjustments applied after the weighted sum
const (
	experiencedActivities    = 20
	veteranActivities        = 50
	experienceBonusSmall     = 1
	experienceBonusLarge     = 2
	excellenceThreshold      = 90
	excellenceBonus          = 3
	slowResolutionMinutes    = 60
	slowResolutionPenalty    = -2
)

// Service defines the Performance Scorer business logic
type Service interface {
	// Score converts raw metrics into one weighted 0-100 score with tier,
	// per-metric contributions and fired context rules
	Score(ctx context.Context, metrics domain.PerformanceMetrics, sctx domain.ScoringContext) (*domain.PerformanceResult, error)

	// SaveConfiguration validates and persists a weight configuration
	SaveConfiguration(ctx context.Context, cfg domain.WeightConfiguration) error

	// InvalidateCache clears the configuration cache (forces reload on next score)
	InvalidateCache()
}

type service struct {
	repo  Repository
	cache *expirable.LRU[string, []domain.WeightConfiguration]
	now   func() time.Time
}

const configCacheKey = "weight_configurations"

// NewService creates a new scorer service. Configurations are cached with
// the given TTL; they are read-mostly and refreshed out of band.
func NewService(repo Repository, cacheTTL time.Duration) Service {
	return &service{
		repo:  repo,
		cache: expirable.NewLRU[string, []domain.WeightConfiguration](1, nil, cacheTTL),
		now:   time.Now,
	}
}

// Score resolves the applicable weight configuration, applies context rules,
// computes the weighted score, then bounded adjustments, and maps the
// clamped result to its tier. Pure with respect to inputs apart from the
// configuration read; it never suspends mid-computation.
func (s *service) Score(ctx context.Context, metrics domain.PerformanceMetrics, sctx domain.ScoringContext) (*domain.PerformanceResult, error) {
	log := logger.FromContext(ctx)

	configs, err := s.loadConfigurations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight configurations: %w", err)
	}

	cfg := resolveConfiguration(configs, sctx, s.now())
	weights, fired := applyContextRules(cfg, sctx)

	values := map[string]float64{
		domain.DimensionTechnicalAccuracy:    metrics.TechnicalAccuracy,
		domain.DimensionCommunicationQuality: metrics.CommunicationQuality,
		domain.DimensionCustomerSatisfaction: metrics.CustomerSatisfaction,
		domain.DimensionProcessCompliance:    metrics.ProcessCompliance,
	}

	weighted := 0.0
	contributions := make([]domain.MetricContribution, 0, len(domain.CoreDimensions))
	for _, dim := range domain.CoreDimensions {
		contribution := values[dim] * weights[dim]
		weighted += contribution
		contributions = append(contributions, domain.MetricContribution{
			Dimension:    dim,
			Value:        values[dim],
			Weight:       weights[dim],
			Contribution: contribution,
		})
	}

	score := int(math.Round(weighted))
	adjustments := s.adjustments(metrics, sctx, weighted)
	for _, adj := range adjustments {
		score += int(adj.Delta)
	}
	score = clamp(score, 0, 100)

	tier := TierForScore(score)

	log.Debug("Performance scored",
		"user_id", sctx.UserID,
		"config_id", cfg.ID,
		"weighted", weighted,
		"score", score,
		"tier", tier.Name,
		"fired_rules", len(fired))

	return &domain.PerformanceResult{
		OverallScore:  score,
		WeightedScore: weighted,
		Tier:          tier,
		ConfigID:      cfg.ID,
		Weights:       weights,
		Contributions: contributions,
		Adjustments:   adjustments,
		FiredRules:    fired,
	}, nil
}

// adjustments returns the bounded additive adjustments: experience bonus,
// difficulty-excellence bonus, slow-resolution penalty
func (s *service) adjustments(metrics domain.PerformanceMetrics, sctx domain.ScoringContext, weighted float64) []domain.ScoreAdjustment {
	var out []domain.ScoreAdjustment

	switch {
	case sctx.ActivitiesDone >= veteranActivities:
		out = append(out, domain.ScoreAdjustment{
			Name:   "experience_bonus",
			Delta:  experienceBonusLarge,
			Reason: fmt.Sprintf("%d completed activities", sctx.ActivitiesDone),
		})
	case sctx.ActivitiesDone >= experiencedActivities:
		out = append(out, domain.ScoreAdjustment{
			Name:   "experience_bonus",
			Delta:  experienceBonusSmall,
			Reason: fmt.Sprintf("%d completed activities", sctx.ActivitiesDone),
		})
	}

	if sctx.Difficulty == domain.DifficultyAdvanced && weighted >= excellenceThreshold {
		out = append(out, domain.ScoreAdjustment{
			Name:   "difficulty_excellence",
			Delta:  excellenceBonus,
			Reason: "excellent performance on an advanced scenario",
		})
	}

	if metrics.ResolutionTime > slowResolutionMinutes {
		out = append(out, domain.ScoreAdjustment{
			Name:   "slow_resolution",
			Delta:  slowResolutionPenalty,
			Reason: fmt.Sprintf("resolution took %.0f minutes", metrics.ResolutionTime),
		})
	}

	return out
}

// SaveConfiguration validates then persists a configuration and drops the
// cache so the next score sees it
func (s *service) SaveConfiguration(ctx context.Context, cfg domain.WeightConfiguration) error {
	if err := ValidateConfiguration(cfg); err != nil {
		return err
	}
	if err := s.repo.PutWeightConfiguration(ctx, cfg); err != nil {
		return fmt.Errorf("failed to store weight configuration: %w", err)
	}
	s.InvalidateCache()
	return nil
}

// InvalidateCache clears the configuration cache
func (s *service) InvalidateCache() {
	s.cache.Purge()
}

func (s *service) loadConfigurations(ctx context.Context) ([]domain.WeightConfiguration, error) {
	if cached, ok := s.cache.Get(configCacheKey); ok {
		return cached, nil
	}

	configs, err := s.repo.GetWeightConfigurations(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Add(configCacheKey, configs)
	return configs, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
