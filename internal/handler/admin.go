package handler

import (
	"net/http"

	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/event"
	"github.com/skillforge/xp-engine/internal/eventlog"
	"github.com/skillforge/xp-engine/internal/logger"
	"github.com/skillforge/xp-engine/internal/scorer"
)

// Event log paging bounds
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 500
)

// AdminHandler handles configuration administration endpoints
type AdminHandler struct {
	scorerSvc   scorer.Service
	bonusSvc    bonus.Service
	eventlogSvc eventlog.Service
	bus         event.Bus
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(scorerSvc scorer.Service, bonusSvc bonus.Service, eventlogSvc eventlog.Service, bus event.Bus) *AdminHandler {
	return &AdminHandler{
		scorerSvc:   scorerSvc,
		bonusSvc:    bonusSvc,
		eventlogSvc: eventlogSvc,
		bus:         bus,
	}
}

// SaveWeightConfiguration handles configuration writes
// @Summary Save a weight configuration
// @Description Validates and persists a weight configuration document; a bad configuration is rejected here, never at calculation time
// @Tags admin
// @Accept json
// @Produce json
// @Param request body domain.WeightConfiguration true "Weight configuration"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid configuration"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/weight-configurations [put]
// @Security ApiKeyAuth
func (h *AdminHandler) SaveWeightConfiguration(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var cfg domain.WeightConfiguration
	if err := DecodeAndValidateRequest(r, w, &cfg, "Save weight configuration"); err != nil {
		return
	}

	if err := h.scorerSvc.SaveConfiguration(r.Context(), cfg); err != nil {
		log.Error("Save weight configuration failed", "error", err, "config_id", cfg.ID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	log.Info("Weight configuration saved", "config_id", cfg.ID, "priority", cfg.Priority)
	h.publishConfigUpdated(r, "weight_configuration", cfg.ID)

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgConfigSavedSuccess})
}

// SaveBonusRule handles bonus rule writes
// @Summary Save a bonus rule
// @Description Validates and persists a bonus rule document
// @Tags admin
// @Accept json
// @Produce json
// @Param request body domain.BonusRule true "Bonus rule"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Invalid rule"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/bonus-rules [put]
// @Security ApiKeyAuth
func (h *AdminHandler) SaveBonusRule(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var rule domain.BonusRule
	if err := DecodeAndValidateRequest(r, w, &rule, "Save bonus rule"); err != nil {
		return
	}

	if err := h.bonusSvc.SaveRule(r.Context(), rule); err != nil {
		log.Error("Save bonus rule failed", "error", err, "rule_id", rule.ID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	log.Info("Bonus rule saved", "rule_id", rule.ID, "points", rule.BonusPoints)
	h.publishConfigUpdated(r, "bonus_rule", rule.ID)

	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgRuleSavedSuccess})
}

// GetUserEvents handles the event log query endpoint
// @Summary Get logged events of a user
// @Description Returns the persisted engine events of one user, newest first
// @Tags admin
// @Produce json
// @Param user_id query string true "User ID"
// @Param limit query int false "Page size (default 50, max 500)"
// @Success 200 {array} eventlog.Entry
// @Failure 400 {object} ErrorResponse "Missing user_id"
// @Router /admin/events [get]
// @Security ApiKeyAuth
func (h *AdminHandler) GetUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetQueryParam(r, w, "user_id")
	if !ok {
		return
	}
	limit, ok := GetLimitParam(r, w, DefaultEventLimit, MaxEventLimit)
	if !ok {
		return
	}

	entries, err := h.eventlogSvc.GetUserEvents(r.Context(), userID, limit)
	if err != nil {
		logger.FromContext(r.Context()).Error("Get events failed", "error", err, "user_id", userID)
		respondError(w, http.StatusInternalServerError, ErrMsgGetEventsFailed)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) publishConfigUpdated(r *http.Request, kind, id string) {
	evt := event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.ConfigUpdated,
		Payload: map[string]interface{}{"kind": kind, "id": id},
	}
	if err := h.bus.Publish(r.Context(), evt); err != nil {
		logger.FromContext(r.Context()).Warn("Failed to publish config update", "error", err)
	}
}
