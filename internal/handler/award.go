package handler

import (
	"net/http"
	"time"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/ledger"
	"github.com/skillforge/xp-engine/internal/logger"
)

// PerformanceMetricsRequest carries the raw per-dimension measurements
type PerformanceMetricsRequest struct {
	TechnicalAccuracy    float64 `json:"technical_accuracy" validate:"gte=0,lte=100"`
	CommunicationQuality float64 `json:"communication_quality" validate:"gte=0,lte=100"`
	CustomerSatisfaction float64 `json:"customer_satisfaction" validate:"gte=0,lte=100"`
	ProcessCompliance    float64 `json:"process_compliance" validate:"gte=0,lte=100"`
	ResolutionTime       float64 `json:"resolution_time" validate:"gte=0"`
	VerificationSuccess  bool    `json:"verification_success"`
	FirstTimeResolution  bool    `json:"first_time_resolution"`
	KnowledgeSharing     bool    `json:"knowledge_sharing"`
}

// AwardXPRequest represents one award submission
type AwardXPRequest struct {
	UserID             string                    `json:"user_id" validate:"required,max=100"`
	ActivityID         string                    `json:"activity_id" validate:"required,max=200"`
	ActivityType       string                    `json:"activity_type" validate:"required,activity_type"`
	ScenarioDifficulty string                    `json:"scenario_difficulty" validate:"required,difficulty"`
	PerformanceMetrics PerformanceMetricsRequest `json:"performance_metrics" validate:"required"`
	AdditionalContext  map[string]interface{}    `json:"additional_context,omitempty"`
}

// AwardXPResponse returns the persisted award with its breakdown
type AwardXPResponse struct {
	RecordID  string             `json:"record_id"`
	XPAwarded int                `json:"xp_awarded"`
	Breakdown domain.XPBreakdown `json:"breakdown"`
}

// AwardHandler handles XP award submissions
type AwardHandler struct {
	ledgerSvc ledger.Service
}

// NewAwardHandler creates a new award handler
func NewAwardHandler(ledgerSvc ledger.Service) *AwardHandler {
	return &AwardHandler{ledgerSvc: ledgerSvc}
}

// Award handles the award endpoint
// @Summary Award XP for a completed activity
// @Description Runs the full award pipeline and returns the persisted record with its calculation breakdown
// @Tags xp
// @Accept json
// @Produce json
// @Param request body AwardXPRequest true "Award submission"
// @Success 201 {object} AwardXPResponse "XP awarded"
// @Failure 400 {object} ErrorResponse "Invalid submission"
// @Failure 409 {object} ErrorResponse "Activity already awarded"
// @Failure 429 {object} ErrorResponse "Submission rate too high"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /xp/award [post]
// @Security ApiKeyAuth
func (h *AwardHandler) Award(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req AwardXPRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Award XP"); err != nil {
		return
	}

	log.Info("Award request received",
		"user_id", req.UserID,
		"activity_id", req.ActivityID,
		"activity_type", req.ActivityType)

	tx := domain.XPTransaction{
		UserID:     req.UserID,
		ActivityID: req.ActivityID,
		ActivityData: domain.ActivityData{
			Type:               domain.ActivityType(req.ActivityType),
			ScenarioDifficulty: domain.Difficulty(req.ScenarioDifficulty),
			PerformanceMetrics: domain.PerformanceMetrics{
				TechnicalAccuracy:    req.PerformanceMetrics.TechnicalAccuracy,
				CommunicationQuality: req.PerformanceMetrics.CommunicationQuality,
				CustomerSatisfaction: req.PerformanceMetrics.CustomerSatisfaction,
				ProcessCompliance:    req.PerformanceMetrics.ProcessCompliance,
				ResolutionTime:       req.PerformanceMetrics.ResolutionTime,
				VerificationSuccess:  req.PerformanceMetrics.VerificationSuccess,
				FirstTimeResolution:  req.PerformanceMetrics.FirstTimeResolution,
				KnowledgeSharing:     req.PerformanceMetrics.KnowledgeSharing,
			},
			AdditionalContext: req.AdditionalContext,
		},
		SubmittedAt: time.Now(),
	}

	record, err := h.ledgerSvc.AwardXP(r.Context(), tx)
	if err != nil {
		log.Error("Award failed", "error", err, "user_id", req.UserID, "activity_id", req.ActivityID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusCreated, AwardXPResponse{
		RecordID:  record.ID,
		XPAwarded: record.XPAwarded,
		Breakdown: record.Breakdown,
	})
}
