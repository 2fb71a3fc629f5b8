package domain

import "time"

// StreakType identifies one of the per-user streak counters
type StreakType string

const (
	StreakCompletion StreakType = "completion"
	StreakQuality    StreakType = "quality"
	StreakPerfect    StreakType = "perfect"
	StreakLearning   StreakType = "learning"
)

// AllStreakTypes lists every streak counter updated per completed activity
var AllStreakTypes = []StreakType{
	StreakCompletion,
	StreakQuality,
	StreakPerfect,
	StreakLearning,
}

// StreakHistoryLimit bounds the per-streak history to the most recent entries
const StreakHistoryLimit = 30

// StreakEntry is one history entry of a streak counter
type StreakEntry struct {
	ActivityID  string    `json:"activity_id"`
	Maintained  bool      `json:"maintained"`
	StreakAfter int       `json:"streak_after"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// StreakData is the per (user, streak type) state. Mutated exactly once per
// completed activity, serialized per user.
type StreakData struct {
	UserID        string        `json:"user_id"`
	Type          StreakType    `json:"type"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
	LastActivity  time.Time     `json:"last_activity"`
	History       []StreakEntry `json:"history,omitempty"`
}

// Apply advances the streak by one completed activity. If the maintenance
// predicate held, the counter increments; otherwise it resets to 0. The
// violation (or continuation) is appended to the bounded history.
func (s *StreakData) Apply(activityID string, maintained bool, at time.Time) {
	if maintained {
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
	} else {
		s.CurrentStreak = 0
	}
	s.LastActivity = at

	s.History = append(s.History, StreakEntry{
		ActivityID:  activityID,
		Maintained:  maintained,
		StreakAfter: s.CurrentStreak,
		RecordedAt:  at,
	})
	if len(s.History) > StreakHistoryLimit {
		s.History = s.History[len(s.History)-StreakHistoryLimit:]
	}
}
