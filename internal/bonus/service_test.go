package bonus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/xp-engine/internal/domain"
)

// MockRepository implements Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetBonusRules(ctx context.Context) ([]domain.BonusRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BonusRule), args.Error(1)
}

func (m *MockRepository) PutBonusRule(ctx context.Context, rule domain.BonusRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRepository) GetSpecialEvents(ctx context.Context) ([]domain.SpecialEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SpecialEvent), args.Error(1)
}

func (m *MockRepository) GetStreak(ctx context.Context, userID string, streakType domain.StreakType) (*domain.StreakData, error) {
	args := m.Called(ctx, userID, streakType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreakData), args.Error(1)
}

func (m *MockRepository) PutStreak(ctx context.Context, streak *domain.StreakData) error {
	args := m.Called(ctx, streak)
	return args.Error(0)
}

// Test fixtures
func firstTryRule() domain.BonusRule {
	return domain.BonusRule{
		ID:          "first-try-resolution",
		Name:        "First-Try Resolution",
		Category:    domain.BonusCategoryPerformance,
		BonusPoints: 8,
		Conditions: []domain.BonusCondition{
			{Source: domain.ConditionSourceMetric, Field: "first_time_resolution", Operator: domain.OpEqual, Value: true},
		},
		Priority: 100,
		Active:   true,
	}
}

func speedRule() domain.BonusRule {
	return domain.BonusRule{
		ID:          "speed-bonus",
		Name:        "Speed Bonus",
		Category:    domain.BonusCategoryPerformance,
		BonusPoints: 5,
		Conditions: []domain.BonusCondition{
			{Source: domain.ConditionSourceMetric, Field: "resolution_time", Operator: domain.OpLessOrEqual, Value: 30.0},
		},
		Priority: 90,
		Active:   true,
	}
}

func qualityStreakRule() domain.BonusRule {
	return domain.BonusRule{
		ID:          "quality-streak-5",
		Name:        "Quality Streak",
		Category:    domain.BonusCategoryStreak,
		BonusPoints: 10,
		Conditions: []domain.BonusCondition{
			{Source: domain.ConditionSourceStreak, Field: string(domain.StreakQuality), Operator: domain.OpGreaterOrEqual, Value: 5.0},
		},
		Priority: 70,
		Active:   true,
	}
}

func createMetrics() domain.PerformanceMetrics {
	return domain.PerformanceMetrics{
		TechnicalAccuracy:    85,
		CommunicationQuality: 78,
		CustomerSatisfaction: 82,
		ProcessCompliance:    75,
		ResolutionTime:       28,
		FirstTimeResolution:  true,
	}
}

func noEvents(repo *MockRepository) {
	repo.On("GetSpecialEvents", mock.Anything).Return([]domain.SpecialEvent{}, nil)
}

func TestEvaluate_RulesApplied(t *testing.T) {
	// ARRANGE: first-try and speed both satisfied, streak rule not
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{firstTryRule(), speedRule(), qualityStreakRule()}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	// ACT
	result, err := svc.Evaluate(context.Background(), createMetrics(), emptyStreakSet("user-123"))

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 13, result.TotalBonus)
	require.Len(t, result.Applications, 2)
	// Applications come out in priority order
	assert.Equal(t, "first-try-resolution", result.Applications[0].RuleID)
	assert.Equal(t, "speed-bonus", result.Applications[1].RuleID)
}

func TestEvaluate_NearMiss(t *testing.T) {
	// ARRANGE: resolution time 32 misses the 30-minute threshold by less
	// than 10%
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{speedRule()}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	metrics := createMetrics()
	metrics.ResolutionTime = 32

	// ACT
	result, err := svc.Evaluate(context.Background(), metrics, emptyStreakSet("user-123"))

	// ASSERT
	require.NoError(t, err)
	assert.Equal(t, 0, result.TotalBonus)
	require.Len(t, result.MissedBonuses, 1)
	missed := result.MissedBonuses[0]
	assert.Equal(t, "speed-bonus", missed.RuleID)
	assert.Equal(t, 30.0, missed.Threshold)
	assert.Equal(t, 32.0, missed.Actual)
	assert.InDelta(t, 2.0, missed.Distance, 0.0001)
}

func TestEvaluate_FarMissIsNotNearMiss(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{speedRule()}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	metrics := createMetrics()
	metrics.ResolutionTime = 50

	result, err := svc.Evaluate(context.Background(), metrics, emptyStreakSet("user-123"))

	require.NoError(t, err)
	assert.Empty(t, result.MissedBonuses)
}

func TestEvaluate_TwoFailedConditionsNeverNearMiss(t *testing.T) {
	// A rule is a near-miss only when exactly one condition failed
	rule := domain.BonusRule{
		ID:          "combo",
		Name:        "Combo",
		Category:    domain.BonusCategoryPerformance,
		BonusPoints: 12,
		Conditions: []domain.BonusCondition{
			{Source: domain.ConditionSourceMetric, Field: "resolution_time", Operator: domain.OpLessOrEqual, Value: 30.0},
			{Source: domain.ConditionSourceMetric, Field: domain.DimensionTechnicalAccuracy, Operator: domain.OpGreaterOrEqual, Value: 90.0},
		},
		Priority: 50,
		Active:   true,
	}
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{rule}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	metrics := createMetrics()
	metrics.ResolutionTime = 31 // within margin
	metrics.TechnicalAccuracy = 89

	result, err := svc.Evaluate(context.Background(), metrics, emptyStreakSet("user-123"))

	require.NoError(t, err)
	assert.Empty(t, result.Applications)
	assert.Empty(t, result.MissedBonuses)
}

func TestEvaluate_MalformedRuleSkipped(t *testing.T) {
	// ARRANGE: a rule with an unknown field must not abort evaluation of
	// the others
	malformed := domain.BonusRule{
		ID:          "broken",
		Name:        "Broken",
		Category:    domain.BonusCategoryPerformance,
		BonusPoints: 100,
		Conditions: []domain.BonusCondition{
			{Source: domain.ConditionSourceMetric, Field: "no_such_field", Operator: domain.OpEqual, Value: true},
		},
		Priority: 999,
		Active:   true,
	}
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{malformed, firstTryRule()}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	// ACT
	result, err := svc.Evaluate(context.Background(), createMetrics(), emptyStreakSet("user-123"))

	// ASSERT: broken rule excluded, healthy rule still applied
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalBonus)
	require.Len(t, result.Applications, 1)
	assert.Equal(t, "first-try-resolution", result.Applications[0].RuleID)
}

func TestEvaluate_InactiveAndExpiredRulesSkipped(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	inactive := firstTryRule()
	inactive.ID = "inactive"
	inactive.Active = false
	expired := firstTryRule()
	expired.ID = "expired"
	expired.ValidUntil = &past

	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{inactive, expired}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	result, err := svc.Evaluate(context.Background(), createMetrics(), emptyStreakSet("user-123"))

	require.NoError(t, err)
	assert.Empty(t, result.Applications)
	assert.Equal(t, 0, result.TotalBonus)
}

func TestEvaluate_StreakRuleFires(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{qualityStreakRule()}, nil)
	noEvents(repo)
	svc := NewService(repo, nil)

	streaks := emptyStreakSet("user-123")
	streaks[domain.StreakQuality].CurrentStreak = 5

	result, err := svc.Evaluate(context.Background(), createMetrics(), streaks)

	require.NoError(t, err)
	assert.Equal(t, 10, result.TotalBonus)
}

func TestEvaluate_SpecialEventMultiplier(t *testing.T) {
	// ARRANGE: active event doubling rule bonuses
	now := time.Now()
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{firstTryRule(), speedRule()}, nil)
	repo.On("GetSpecialEvents", mock.Anything).Return([]domain.SpecialEvent{
		{
			ID:              "launch-week",
			Name:            "Launch Week",
			BonusMultiplier: 2.0,
			StartsAt:        now.Add(-time.Hour),
			EndsAt:          now.Add(time.Hour),
		},
	}, nil)
	svc := NewService(repo, nil)

	// ACT
	result, err := svc.Evaluate(context.Background(), createMetrics(), emptyStreakSet("user-123"))

	// ASSERT: 13 rule bonus + round(13 x 1.0) event bonus
	require.NoError(t, err)
	assert.Equal(t, "Launch Week", result.EventName)
	assert.Equal(t, 13, result.EventBonus)
	assert.Equal(t, 26, result.TotalBonus)
}

func TestEvaluate_SpecialEventTieBreaksOnEarliestStart(t *testing.T) {
	now := time.Now()
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{firstTryRule()}, nil)
	repo.On("GetSpecialEvents", mock.Anything).Return([]domain.SpecialEvent{
		{ID: "later", Name: "Later", BonusMultiplier: 1.5, StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)},
		{ID: "earlier", Name: "Earlier", BonusMultiplier: 1.5, StartsAt: now.Add(-2 * time.Hour), EndsAt: now.Add(time.Hour)},
	}, nil)
	svc := NewService(repo, nil)

	result, err := svc.Evaluate(context.Background(), createMetrics(), emptyStreakSet("user-123"))

	require.NoError(t, err)
	assert.Equal(t, "Earlier", result.EventName)
}

func TestEvaluate_EventLoadFailureKeepsRuleBonuses(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetBonusRules", mock.Anything).Return([]domain.BonusRule{firstTryRule()}, nil)
	repo.On("GetSpecialEvents", mock.Anything).Return(nil, errors.New("connection lost"))
	svc := NewService(repo, nil)

	result, err := svc.Evaluate(context.Background(), createMetrics(), emptyStreakSet("user-123"))

	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalBonus)
	assert.Empty(t, result.EventName)
}

func TestSaveRule_RejectsUnknownCategory(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	rule := firstTryRule()
	rule.Category = "mystery"

	err := svc.SaveRule(context.Background(), rule)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "PutBonusRule", mock.Anything, mock.Anything)
}

func TestSaveRule_Valid(t *testing.T) {
	repo := new(MockRepository)
	repo.On("PutBonusRule", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, nil)

	err := svc.SaveRule(context.Background(), firstTryRule())

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
