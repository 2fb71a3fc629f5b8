package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/eventlog"
)

// Hand-rolled service mocks shared by the handler tests.

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) AwardXP(ctx context.Context, tx domain.XPTransaction) (*domain.XPRecord, error) {
	args := m.Called(ctx, tx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.XPRecord), args.Error(1)
}

func (m *MockLedgerService) GetCurrentXP(ctx context.Context, userID string) (*domain.CurrentXP, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentXP), args.Error(1)
}

func (m *MockLedgerService) GetUserXPSummary(ctx context.Context, userID string) (*domain.UserXPSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserXPSummary), args.Error(1)
}

func (m *MockLedgerService) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LeaderboardEntry), args.Error(1)
}

type MockBonusService struct {
	mock.Mock
}

func (m *MockBonusService) UpdateStreaks(ctx context.Context, userID, activityID string, activity domain.ActivityData, overallScore int, at time.Time) (map[domain.StreakType]*domain.StreakData, error) {
	args := m.Called(ctx, userID, activityID, activity, overallScore, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.StreakType]*domain.StreakData), args.Error(1)
}

func (m *MockBonusService) GetStreaks(ctx context.Context, userID string) (map[domain.StreakType]*domain.StreakData, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.StreakType]*domain.StreakData), args.Error(1)
}

func (m *MockBonusService) Evaluate(ctx context.Context, metrics domain.PerformanceMetrics, streaks map[domain.StreakType]*domain.StreakData) (*domain.BonusResult, error) {
	args := m.Called(ctx, metrics, streaks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BonusResult), args.Error(1)
}

func (m *MockBonusService) SaveRule(ctx context.Context, rule domain.BonusRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

type MockTransparencyService struct {
	mock.Mock
}

func (m *MockTransparencyService) Generate(ctx context.Context, userID, activityID string) (*domain.TransparencyReport, error) {
	args := m.Called(ctx, userID, activityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransparencyReport), args.Error(1)
}

func (m *MockTransparencyService) GetReport(ctx context.Context, reportID string) (*domain.TransparencyReport, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransparencyReport), args.Error(1)
}

func (m *MockTransparencyService) Explain(ctx context.Context, reportID string, query domain.ExplanationQuery, verbosity string) (*domain.ExplanationResponse, error) {
	args := m.Called(ctx, reportID, query, verbosity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExplanationResponse), args.Error(1)
}

type MockScorerService struct {
	mock.Mock
}

func (m *MockScorerService) Score(ctx context.Context, metrics domain.PerformanceMetrics, sctx domain.ScoringContext) (*domain.PerformanceResult, error) {
	args := m.Called(ctx, metrics, sctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PerformanceResult), args.Error(1)
}

func (m *MockScorerService) SaveConfiguration(ctx context.Context, cfg domain.WeightConfiguration) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockScorerService) InvalidateCache() {
	m.Called()
}

type MockEventlogService struct {
	mock.Mock
}

func (m *MockEventlogService) Subscribe(bus event.Bus) error {
	args := m.Called(bus)
	return args.Error(0)
}

func (m *MockEventlogService) GetUserEvents(ctx context.Context, userID string, limit int) ([]eventlog.Entry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]eventlog.Entry), args.Error(1)
}

func (m *MockEventlogService) CleanupOldEvents(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}
