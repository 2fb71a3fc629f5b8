package ledger

import (
	"log/slog"
	"sync"
	"time"
)

// RateGuard tracks accepted awards per user inside a rolling window and
// flags runs that exceed the threshold. Only accepted awards count;
// rejected submissions never tighten the window. State is in-memory, so a
// restart resets the window; the duplicate check still blocks replays.
type RateGuard struct {
	mu        sync.Mutex
	window    time.Duration
	threshold int
	accepted  map[string][]time.Time
}

// NewRateGuard creates a guard allowing at most threshold accepted awards
// per user inside the window
func NewRateGuard(window time.Duration, threshold int) *RateGuard {
	return &RateGuard{
		window:    window,
		threshold: threshold,
		accepted:  make(map[string][]time.Time),
	}
}

// Allow reports whether one more award may be accepted for the user at the
// given instant
func (g *RateGuard) Allow(userID string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(userID, now)
	if len(g.accepted[userID]) >= g.threshold {
		slog.Warn("Award rate threshold exceeded",
			"user_id", userID,
			"accepted_in_window", len(g.accepted[userID]),
			"window", g.window)
		return false
	}
	return true
}

// InWindow returns the number of accepted awards currently inside the window
func (g *RateGuard) InWindow(userID string, now time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(userID, now)
	return len(g.accepted[userID])
}

// Record marks one accepted award. Call only after persistence succeeds.
func (g *RateGuard) Record(userID string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.prune(userID, now)
	g.accepted[userID] = append(g.accepted[userID], now)
}

// prune drops entries older than the window. Caller must hold the mutex.
func (g *RateGuard) prune(userID string, now time.Time) {
	cutoff := now.Add(-g.window)
	entries := g.accepted[userID]
	kept := entries[:0]
	for _, t := range entries {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(g.accepted, userID)
		return
	}
	g.accepted[userID] = kept
}
