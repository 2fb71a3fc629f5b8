package bonus

import (
	"context"
	"fmt"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/logger"
)

// Streak maintenance thresholds
const (
	qualityStreakScore = 80
	perfectStreakScore = 95
)

// maintained evaluates the maintenance predicate of one streak type for a
// completed activity
func maintained(streakType domain.StreakType, activity domain.ActivityData, overallScore int) bool {
	switch streakType {
	case domain.StreakCompletion:
		// Any completed activity keeps the completion streak alive
		return true
	case domain.StreakQuality:
		return overallScore >= qualityStreakScore
	case domain.StreakPerfect:
		return overallScore >= perfectStreakScore
	case domain.StreakLearning:
		return activity.Type == domain.ActivityLearningProgress || activity.PerformanceMetrics.KnowledgeSharing
	default:
		return false
	}
}

// UpdateStreaks advances every streak counter of the user by one completed
// activity and returns the post-update state. The caller holds the per-user
// lock, so the read-modify-write below cannot interleave with another award
// for the same user.
func (s *service) UpdateStreaks(ctx context.Context, userID, activityID string, activity domain.ActivityData, overallScore int, at time.Time) (map[domain.StreakType]*domain.StreakData, error) {
	log := logger.FromContext(ctx)
	out := make(map[domain.StreakType]*domain.StreakData, len(domain.AllStreakTypes))

	for _, streakType := range domain.AllStreakTypes {
		streak, err := s.repo.GetStreak(ctx, userID, streakType)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s streak: %w", streakType, err)
		}
		if streak == nil {
			streak = &domain.StreakData{UserID: userID, Type: streakType}
		}

		kept := maintained(streakType, activity, overallScore)
		broken := !kept && streak.CurrentStreak > 0
		brokenLength := streak.CurrentStreak

		streak.Apply(activityID, kept, at)

		if err := s.repo.PutStreak(ctx, streak); err != nil {
			return nil, fmt.Errorf("failed to store %s streak: %w", streakType, err)
		}

		if broken {
			log.Info("Streak broken", "user_id", userID, "streak_type", streakType, "length", brokenLength)
			if s.bus != nil {
				if err := s.bus.Publish(ctx, event.NewStreakBrokenEvent(userID, string(streakType), brokenLength, activityID)); err != nil {
					log.Warn("Failed to publish streak break", "error", err)
				}
			}
		}

		out[streakType] = streak
	}

	return out, nil
}

// GetStreaks returns the current streak set of a user without mutating it
func (s *service) GetStreaks(ctx context.Context, userID string) (map[domain.StreakType]*domain.StreakData, error) {
	out := make(map[domain.StreakType]*domain.StreakData, len(domain.AllStreakTypes))
	for _, streakType := range domain.AllStreakTypes {
		streak, err := s.repo.GetStreak(ctx, userID, streakType)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s streak: %w", streakType, err)
		}
		if streak == nil {
			streak = &domain.StreakData{UserID: userID, Type: streakType}
		}
		out[streakType] = streak
	}
	return out, nil
}

// emptyStreakSet builds a zeroed streak set, used for rule normalization
// checks and first-activity evaluation
func emptyStreakSet(userID string) map[domain.StreakType]*domain.StreakData {
	out := make(map[domain.StreakType]*domain.StreakData, len(domain.AllStreakTypes))
	for _, streakType := range domain.AllStreakTypes {
		out[streakType] = &domain.StreakData{UserID: userID, Type: streakType}
	}
	return out
}
