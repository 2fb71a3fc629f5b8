package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/concurrency"
	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/memstore"
	"github.com/skillforge/xp-engine/internal/scorer"
)

// testStack wires the full award pipeline against in-memory stores
type testStack struct {
	service Service
	ledger  *memstore.LedgerStore
	bus     *event.MemoryBus
	guard   *RateGuard
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	ledgerStore := memstore.NewLedgerStore()
	bus := event.NewMemoryBus()
	scorerSvc := scorer.NewService(memstore.NewConfigStore(), time.Minute)
	bonusSvc := bonus.NewService(memstore.NewBonusStore(), bus)
	guard := NewRateGuard(60*time.Second, 5)

	svc := NewService(ledgerStore, scorerSvc, bonusSvc, guard, concurrency.NewLockManager(), bus)
	return &testStack{service: svc, ledger: ledgerStore, bus: bus, guard: guard}
}

func (s *testStack) collect(eventType event.Type) *[]event.Event {
	var captured []event.Event
	s.bus.Subscribe(eventType, func(ctx context.Context, evt event.Event) error {
		captured = append(captured, evt)
		return nil
	})
	return &captured
}

func createTransaction(userID, activityID string) domain.XPTransaction {
	return domain.XPTransaction{
		UserID:     userID,
		ActivityID: activityID,
		ActivityData: domain.ActivityData{
			Type:               domain.ActivityTicketCompletion,
			ScenarioDifficulty: domain.DifficultyIntermediate,
			PerformanceMetrics: domain.PerformanceMetrics{
				TechnicalAccuracy:    85,
				CommunicationQuality: 78,
				CustomerSatisfaction: 82,
				ProcessCompliance:    75,
				ResolutionTime:       28,
				VerificationSuccess:  true,
				FirstTimeResolution:  true,
			},
		},
		SubmittedAt: time.Now(),
	}
}

func TestAwardXP_WorkedScenario(t *testing.T) {
	// ARRANGE
	stack := newTestStack(t)
	awarded := stack.collect(event.XPAwarded)

	// ACT
	record, err := stack.service.AwardXP(context.Background(), createTransaction("user-123", "act-1"))

	// ASSERT: score 80 ("Good" x1.0), base 20 x 1.5, +8 first-try +5 speed
	require.NoError(t, err)
	assert.Equal(t, 43, record.XPAwarded)
	assert.Equal(t, 80, record.Breakdown.Performance.OverallScore)
	assert.Equal(t, "Good", record.Breakdown.Performance.Tier.Name)
	assert.Equal(t, 13, record.Breakdown.BonusXP)
	assert.True(t, record.Validated)
	assert.NotEmpty(t, record.ID)

	require.Len(t, *awarded, 1)
	payload, ok := (*awarded)[0].Payload.(event.XPAwardedPayloadV1)
	require.True(t, ok)
	assert.Equal(t, 43, payload.XPAwarded)
	assert.Equal(t, "Good", payload.Tier)
}

func TestAwardXP_Deterministic(t *testing.T) {
	// Identical inputs on two independent stacks produce identical XP
	first, err := newTestStack(t).service.AwardXP(context.Background(), createTransaction("user-123", "act-1"))
	require.NoError(t, err)
	second, err := newTestStack(t).service.AwardXP(context.Background(), createTransaction("user-123", "act-1"))
	require.NoError(t, err)

	assert.Equal(t, first.XPAwarded, second.XPAwarded)
	assert.Equal(t, first.Breakdown.Performance.OverallScore, second.Breakdown.Performance.OverallScore)
}

func TestAwardXP_ValidationRejected(t *testing.T) {
	stack := newTestStack(t)
	rejected := stack.collect(event.XPRejected)

	tx := createTransaction("user-123", "act-1")
	tx.ActivityData.PerformanceMetrics.TechnicalAccuracy = 150

	record, err := stack.service.AwardXP(context.Background(), tx)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Nil(t, record)

	require.Len(t, *rejected, 1)
	payload := (*rejected)[0].Payload.(event.XPRejectedPayloadV1)
	assert.Equal(t, RejectReasonValidation, payload.Reason)
}

func TestAwardXP_DuplicateRejected(t *testing.T) {
	stack := newTestStack(t)
	rejected := stack.collect(event.XPRejected)
	ctx := context.Background()

	_, err := stack.service.AwardXP(ctx, createTransaction("user-123", "act-1"))
	require.NoError(t, err)

	record, err := stack.service.AwardXP(ctx, createTransaction("user-123", "act-1"))

	assert.ErrorIs(t, err, domain.ErrDuplicateActivity)
	assert.Nil(t, record)

	require.Len(t, *rejected, 1)
	payload := (*rejected)[0].Payload.(event.XPRejectedPayloadV1)
	assert.Equal(t, RejectReasonDuplicate, payload.Reason)

	// The first award stands untouched
	current, err := stack.service.GetCurrentXP(ctx, "user-123")
	require.NoError(t, err)
	assert.Equal(t, int64(43), current.TotalXP)
}

func TestAwardXP_GamingGuardTrips(t *testing.T) {
	// ARRANGE: threshold is 5 accepted awards per window
	stack := newTestStack(t)
	suspected := stack.collect(event.GamingSuspected)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := stack.service.AwardXP(ctx, createTransaction("user-123", fmt.Sprintf("act-%d", i)))
		require.NoError(t, err)
	}

	// ACT: the sixth submission inside the window
	record, err := stack.service.AwardXP(ctx, createTransaction("user-123", "act-5"))

	// ASSERT
	assert.ErrorIs(t, err, domain.ErrGamingSuspected)
	assert.Nil(t, record)

	require.Len(t, *suspected, 1)
	payload := (*suspected)[0].Payload.(event.GamingSuspectedPayloadV1)
	assert.Equal(t, "user-123", payload.UserID)
	assert.Equal(t, 5, payload.AcceptedInWindow)
	assert.Equal(t, 60, payload.WindowSeconds)
}

func TestAwardXP_GamingGuardIsPerUser(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := stack.service.AwardXP(ctx, createTransaction("user-123", fmt.Sprintf("act-%d", i)))
		require.NoError(t, err)
	}

	// Another user is unaffected by the first user's window
	record, err := stack.service.AwardXP(ctx, createTransaction("user-456", "act-0"))

	require.NoError(t, err)
	assert.Equal(t, 43, record.XPAwarded)
}

func TestAwardXP_RejectionsDoNotTightenWindow(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	_, err := stack.service.AwardXP(ctx, createTransaction("user-123", "act-1"))
	require.NoError(t, err)

	// Duplicates are rejected before the guard records anything
	for i := 0; i < 10; i++ {
		_, err = stack.service.AwardXP(ctx, createTransaction("user-123", "act-1"))
		assert.ErrorIs(t, err, domain.ErrDuplicateActivity)
	}

	assert.Equal(t, 1, stack.guard.InWindow("user-123", time.Now()))
}

func TestAwardXP_LevelUpEvent(t *testing.T) {
	// ARRANGE: preseed the total just below the level boundary
	stack := newTestStack(t)
	levelUps := stack.collect(event.LevelUp)
	ctx := context.Background()

	require.NoError(t, stack.ledger.SetUserTotal(ctx, domain.UserTotal{
		UserID:     "user-123",
		TotalXP:    990,
		AchievedAt: time.Now(),
	}))

	// ACT: +43 XP crosses 1000
	_, err := stack.service.AwardXP(ctx, createTransaction("user-123", "act-1"))

	// ASSERT
	require.NoError(t, err)
	require.Len(t, *levelUps, 1)
	payload := (*levelUps)[0].Payload.(event.LevelUpPayloadV1)
	assert.Equal(t, 0, payload.OldLevel)
	assert.Equal(t, 1, payload.NewLevel)
	assert.Equal(t, int64(1033), payload.TotalXP)
}

func TestGetCurrentXP_UnknownUser(t *testing.T) {
	stack := newTestStack(t)

	current, err := stack.service.GetCurrentXP(context.Background(), "nobody")

	require.NoError(t, err)
	assert.Equal(t, int64(0), current.TotalXP)
	assert.Equal(t, 0, current.Level)
	assert.Equal(t, int64(domain.XPPerLevel), current.XPToNextLevel)
}

func TestGetCurrentXP_RequiresUserID(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.service.GetCurrentXP(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetUserXPSummary(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	_, err := stack.service.AwardXP(ctx, createTransaction("user-123", "act-1"))
	require.NoError(t, err)

	tx := createTransaction("user-123", "act-2")
	tx.ActivityData.Type = domain.ActivityDocumentation
	_, err = stack.service.AwardXP(ctx, tx)
	require.NoError(t, err)

	summary, err := stack.service.GetUserXPSummary(ctx, "user-123")

	require.NoError(t, err)
	assert.Equal(t, "user-123", summary.UserID)
	assert.Equal(t, 2, len(summary.RecentXP))
	assert.NotEmpty(t, summary.TopActivities)
	assert.Equal(t, domain.LevelForXP(summary.TotalXP), summary.Level)
}

func TestGetLeaderboard_DenseRanksAndTieBreak(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, stack.ledger.SetUserTotal(ctx, domain.UserTotal{UserID: "late", TotalXP: 500, AchievedAt: base.Add(time.Hour)}))
	require.NoError(t, stack.ledger.SetUserTotal(ctx, domain.UserTotal{UserID: "early", TotalXP: 500, AchievedAt: base}))
	require.NoError(t, stack.ledger.SetUserTotal(ctx, domain.UserTotal{UserID: "leader", TotalXP: 2200, AchievedAt: base}))

	entries, err := stack.service.GetLeaderboard(ctx, 10)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "leader", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 2, entries[0].Level)
	// Equal XP ranks by earliest achievement
	assert.Equal(t, "early", entries[1].UserID)
	assert.Equal(t, "late", entries[2].UserID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestGetLeaderboard_RejectsBadLimit(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.service.GetLeaderboard(context.Background(), 0)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAwardXP_ConcurrentAwardsSerialized(t *testing.T) {
	// ARRANGE: a guard wide enough that the window never trips
	ledgerStore := memstore.NewLedgerStore()
	bus := event.NewMemoryBus()
	scorerSvc := scorer.NewService(memstore.NewConfigStore(), time.Minute)
	bonusSvc := bonus.NewService(memstore.NewBonusStore(), bus)
	svc := NewService(ledgerStore, scorerSvc, bonusSvc, NewRateGuard(60*time.Second, 1000), concurrency.NewLockManager(), bus)

	const awards = 20
	ctx := context.Background()

	// ACT: concurrent submissions for the same user, distinct activities
	var wg sync.WaitGroup
	errs := make([]error, awards)
	records := make([]*domain.XPRecord, awards)
	for i := 0; i < awards; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			records[i], errs[i] = svc.AwardXP(ctx, createTransaction("user-1", fmt.Sprintf("act-%d", i)))
		}(i)
	}
	wg.Wait()

	// ASSERT: every award accepted and the running total lost nothing.
	// Streak bonuses make per-award XP vary with ordering, so compare
	// against the sum of what was actually granted.
	var sum int64
	for i, err := range errs {
		require.NoError(t, err, "award %d", i)
		sum += int64(records[i].XPAwarded)
	}
	current, err := svc.GetCurrentXP(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, sum, current.TotalXP)
	assert.GreaterOrEqual(t, current.TotalXP, int64(awards*43))
}
