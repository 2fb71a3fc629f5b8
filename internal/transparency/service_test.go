package transparency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/xp-engine/internal/analytics"
	"github.com/skillforge/xp-engine/internal/calculator"
	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/memstore"
)

// fakeProvider serves fixed comparison aggregates
type fakeProvider struct {
	population *analytics.PopulationStats
	history    *analytics.UserHistory
}

func (p fakeProvider) PopulationStats(ctx context.Context, activityType domain.ActivityType) (*analytics.PopulationStats, error) {
	if p.population == nil {
		return nil, analytics.ErrNoData
	}
	return p.population, nil
}

func (p fakeProvider) UserHistory(ctx context.Context, userID string) (*analytics.UserHistory, error) {
	if p.history == nil {
		return nil, analytics.ErrNoData
	}
	return p.history, nil
}

func seedRecord(t *testing.T, ledger *memstore.LedgerStore) *domain.XPRecord {
	t.Helper()

	activity := domain.ActivityData{
		Type:               domain.ActivityTicketCompletion,
		ScenarioDifficulty: domain.DifficultyIntermediate,
		PerformanceMetrics: domain.PerformanceMetrics{
			TechnicalAccuracy:    85,
			CommunicationQuality: 78,
			CustomerSatisfaction: 82,
			ProcessCompliance:    75,
			ResolutionTime:       28,
			FirstTimeResolution:  true,
		},
	}
	performance := domain.PerformanceResult{
		OverallScore:  80,
		WeightedScore: 80,
		Tier:          domain.PerformanceTier{Name: "Good", MinScore: 70, MaxScore: 84, Multiplier: 1.0},
		ConfigID:      domain.BalancedConfigID,
		Weights:       domain.BalancedWeights(),
		Contributions: []domain.MetricContribution{
			{Dimension: domain.DimensionTechnicalAccuracy, Value: 85, Weight: 0.25, Contribution: 21.25},
			{Dimension: domain.DimensionCommunicationQuality, Value: 78, Weight: 0.25, Contribution: 19.5},
			{Dimension: domain.DimensionCustomerSatisfaction, Value: 82, Weight: 0.25, Contribution: 20.5},
			{Dimension: domain.DimensionProcessCompliance, Value: 75, Weight: 0.25, Contribution: 18.75},
		},
	}
	bonuses := domain.BonusResult{
		TotalBonus: 13,
		Applications: []domain.BonusApplication{
			{RuleID: "first-try-resolution", RuleName: "First-Try Resolution", Category: domain.BonusCategoryPerformance, Points: 8},
			{RuleID: "speed-bonus", RuleName: "Speed Bonus", Category: domain.BonusCategoryPerformance, Points: 5},
		},
		MissedBonuses: []domain.MissedBonus{
			{RuleID: "quality-streak-5", RuleName: "Quality Streak", Points: 10, Field: "quality", Threshold: 5, Actual: 4.5, Distance: 0.5},
		},
	}
	total, breakdown := calculator.Calculate(activity, performance, bonuses)

	record := &domain.XPRecord{
		ID:         "rec-1",
		UserID:     "user-123",
		ActivityID: "act-1",
		XPAwarded:  total,
		Activity:   activity,
		Breakdown:  breakdown,
		Timestamp:  time.Now(),
		Validated:  true,
	}
	require.NoError(t, ledger.InsertRecord(context.Background(), record))
	return record
}

func newTestService(t *testing.T, provider analytics.Provider) (Service, *memstore.LedgerStore) {
	t.Helper()
	ledger := memstore.NewLedgerStore()
	svc := NewService(memstore.NewReportStore(), ledger, provider, event.NewMemoryBus(), 16, time.Minute)
	return svc, ledger
}

func TestGenerate_FullReport(t *testing.T) {
	svc, ledger := newTestService(t, analytics.NoopProvider{})
	record := seedRecord(t, ledger)

	report, err := svc.Generate(context.Background(), "user-123", "act-1")

	require.NoError(t, err)
	assert.Equal(t, record.ID, report.RecordID)
	assert.Equal(t, record.XPAwarded, report.TotalXP)

	// Calculation restates every breakdown step
	require.Len(t, report.Calculation, len(record.Breakdown.Steps))
	assert.Equal(t, 1, report.Calculation[0].Step)

	// Performance section carries contributions and rationale
	assert.Equal(t, 80, report.Performance.OverallScore)
	assert.Len(t, report.Performance.Contributions, 4)
	assert.NotEmpty(t, report.Performance.WeightRationale)

	// Bonuses are labeled with rarity
	require.Len(t, report.Bonuses.Applied, 2)
	assert.Equal(t, domain.RarityUncommon, report.Bonuses.Applied[0].Rarity) // 8 points
	assert.Equal(t, domain.RarityCommon, report.Bonuses.Applied[1].Rarity)   // 5 points
	assert.Len(t, report.Bonuses.MissedBonuses, 1)

	// No analytics collaborator: comparison degrades, never fails
	assert.False(t, report.Comparison.Available)
	assert.Equal(t, "no comparison data", report.Comparison.Message)

	// Fairness self-assessment with a populated audit trail
	assert.Equal(t, 1.0, report.Fairness.ConsistencyScore)
	assert.Equal(t, 1.0, report.Fairness.BiasScore) // balanced weights have no spread
	assert.NotEmpty(t, report.Fairness.AuditTrail)
}

func TestGenerate_UnknownActivity(t *testing.T) {
	svc, _ := newTestService(t, analytics.NoopProvider{})

	report, err := svc.Generate(context.Background(), "user-123", "no-such-activity")

	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.Nil(t, report)
}

func TestGenerate_ComparisonAvailable(t *testing.T) {
	provider := fakeProvider{
		population: &analytics.PopulationStats{AverageScore: 74.5, Size: 120, Rank: 18},
		history:    &analytics.UserHistory{AverageXP: 38.2, BestXP: 61, Trend: "improving"},
	}
	svc, ledger := newTestService(t, provider)
	seedRecord(t, ledger)

	report, err := svc.Generate(context.Background(), "user-123", "act-1")

	require.NoError(t, err)
	assert.True(t, report.Comparison.Available)
	assert.Equal(t, 74.5, report.Comparison.PopulationAverage)
	assert.Equal(t, 18, report.Comparison.PopulationRank)
	assert.Equal(t, "improving", report.Comparison.Trend)
}

func TestGenerate_PublishesReportEvent(t *testing.T) {
	ledger := memstore.NewLedgerStore()
	bus := event.NewMemoryBus()

	var generated []event.Event
	bus.Subscribe(event.ReportGenerated, func(ctx context.Context, evt event.Event) error {
		generated = append(generated, evt)
		return nil
	})

	svc := NewService(memstore.NewReportStore(), ledger, analytics.NoopProvider{}, bus, 16, time.Minute)
	seedRecord(t, ledger)

	report, err := svc.Generate(context.Background(), "user-123", "act-1")

	require.NoError(t, err)
	require.Len(t, generated, 1)
	payload, ok := generated[0].Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, report.ID, payload["report_id"])
}

func TestGetReport_RoundTrip(t *testing.T) {
	svc, ledger := newTestService(t, analytics.NoopProvider{})
	seedRecord(t, ledger)

	generated, err := svc.Generate(context.Background(), "user-123", "act-1")
	require.NoError(t, err)

	loaded, err := svc.GetReport(context.Background(), generated.ID)

	require.NoError(t, err)
	assert.Equal(t, generated.ID, loaded.ID)
	assert.Equal(t, generated.TotalXP, loaded.TotalXP)
}

func TestGetReport_NotFound(t *testing.T) {
	svc, _ := newTestService(t, analytics.NoopProvider{})

	_, err := svc.GetReport(context.Background(), "no-such-report")

	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestAuditTrail_ChecksumsVerify(t *testing.T) {
	svc, ledger := newTestService(t, analytics.NoopProvider{})
	seedRecord(t, ledger)

	report, err := svc.Generate(context.Background(), "user-123", "act-1")
	require.NoError(t, err)

	require.NotEmpty(t, report.Fairness.AuditTrail)
	for _, entry := range report.Fairness.AuditTrail {
		assert.True(t, VerifyEntryChecksum(entry.Action, entry.Parameters, entry.Result, entry.Checksum),
			"checksum of %q must verify", entry.Action)
	}
}

func TestAuditTrail_TamperDetected(t *testing.T) {
	svc, ledger := newTestService(t, analytics.NoopProvider{})
	seedRecord(t, ledger)

	report, err := svc.Generate(context.Background(), "user-123", "act-1")
	require.NoError(t, err)

	entry := report.Fairness.AuditTrail[0]
	entry.Parameters = map[string]interface{}{"record_id": "someone-else"}

	assert.False(t, VerifyEntryChecksum(entry.Action, entry.Parameters, entry.Result, entry.Checksum))
}
