package handler

import (
	"net/http"

	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/ledger"
	"github.com/skillforge/xp-engine/internal/logger"
)

// Leaderboard paging bounds
const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// XPHandler handles XP query endpoints
type XPHandler struct {
	ledgerSvc ledger.Service
	bonusSvc  bonus.Service
}

// NewXPHandler creates a new XP query handler
func NewXPHandler(ledgerSvc ledger.Service, bonusSvc bonus.Service) *XPHandler {
	return &XPHandler{ledgerSvc: ledgerSvc, bonusSvc: bonusSvc}
}

// GetCurrentXP handles the current-XP endpoint
// @Summary Get current XP and level
// @Description Returns the running total with the level derived from it
// @Tags xp
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} domain.CurrentXP
// @Failure 400 {object} ErrorResponse "Missing user_id"
// @Router /xp/current [get]
// @Security ApiKeyAuth
func (h *XPHandler) GetCurrentXP(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	current, err := h.ledgerSvc.GetCurrentXP(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Get current XP failed", "error", err, "user_id", userID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, current)
}

// GetSummary handles the summary endpoint
// @Summary Get XP summary
// @Description Returns total, level, recent awards and top activity types
// @Tags xp
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} domain.UserXPSummary
// @Failure 400 {object} ErrorResponse "Missing user_id"
// @Router /xp/summary [get]
// @Security ApiKeyAuth
func (h *XPHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	summary, err := h.ledgerSvc.GetUserXPSummary(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Get XP summary failed", "error", err, "user_id", userID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetStreaks handles the streaks endpoint
// @Summary Get current streaks
// @Description Returns every streak counter of the user without mutating it
// @Tags xp
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} map[string]domain.StreakData
// @Failure 400 {object} ErrorResponse "Missing user_id"
// @Router /xp/streaks [get]
// @Security ApiKeyAuth
func (h *XPHandler) GetStreaks(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}

	streaks, err := h.bonusSvc.GetStreaks(r.Context(), userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Get streaks failed", "error", err, "user_id", userID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, streaks)
}

// GetLeaderboard handles the leaderboard endpoint
// @Summary Get the XP leaderboard
// @Description Returns top users by total XP; ties rank by earliest achievement
// @Tags xp
// @Produce json
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {array} domain.LeaderboardEntry
// @Failure 400 {object} ErrorResponse "Invalid limit"
// @Router /xp/leaderboard [get]
// @Security ApiKeyAuth
func (h *XPHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := GetLimitParam(r, w, DefaultLeaderboardLimit, MaxLeaderboardLimit)
	if !ok {
		return
	}

	entries, err := h.ledgerSvc.GetLeaderboard(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Get leaderboard failed", "error", err)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
