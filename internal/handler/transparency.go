package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge/xp-engine/internal/domain"
	"github.com/skillforge/xp-engine/internal/logger"
	"github.com/skillforge/xp-engine/internal/transparency"
)

// GenerateReportRequest asks for a transparency report of one awarded
// activity
type GenerateReportRequest struct {
	UserID     string `json:"user_id" validate:"required,max=100"`
	ActivityID string `json:"activity_id" validate:"required,max=200"`
}

// TransparencyHandler handles transparency report endpoints
type TransparencyHandler struct {
	transparencySvc transparency.Service
}

// NewTransparencyHandler creates a new transparency handler
func NewTransparencyHandler(transparencySvc transparency.Service) *TransparencyHandler {
	return &TransparencyHandler{transparencySvc: transparencySvc}
}

// Generate handles the report generation endpoint
// @Summary Generate a transparency report
// @Description Builds the full report for one awarded activity from its stored breakdown
// @Tags transparency
// @Accept json
// @Produce json
// @Param request body GenerateReportRequest true "Report request"
// @Success 201 {object} domain.TransparencyReport
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 404 {object} ErrorResponse "No award found for that activity"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /transparency/reports [post]
// @Security ApiKeyAuth
func (h *TransparencyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req GenerateReportRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Generate report"); err != nil {
		return
	}

	report, err := h.transparencySvc.Generate(r.Context(), req.UserID, req.ActivityID)
	if err != nil {
		log.Error("Report generation failed", "error", err,
			"user_id", req.UserID, "activity_id", req.ActivityID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusCreated, report)
}

// GetReport handles the report retrieval endpoint
// @Summary Get a transparency report
// @Description Returns a stored report by ID
// @Tags transparency
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} domain.TransparencyReport
// @Failure 404 {object} ErrorResponse "Report not found"
// @Router /transparency/reports/{id} [get]
// @Security ApiKeyAuth
func (h *TransparencyHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")

	report, err := h.transparencySvc.GetReport(r.Context(), reportID)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Report lookup failed", "error", err, "report_id", reportID)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// Explain handles the explanation query endpoint
// @Summary Explain a calculation
// @Description Answers one query about a stored report at basic or detailed verbosity
// @Tags transparency
// @Produce json
// @Param id path string true "Report ID"
// @Param query query string true "Explanation query" Enums(why_this_score, how_to_improve, bonus_details, comparison_analysis, weight_rationale)
// @Param verbosity query string false "basic or detailed" Enums(basic, detailed)
// @Success 200 {object} domain.ExplanationResponse
// @Failure 400 {object} ErrorResponse "Unknown query"
// @Failure 404 {object} ErrorResponse "Report not found"
// @Router /transparency/reports/{id}/explain [get]
// @Security ApiKeyAuth
func (h *TransparencyHandler) Explain(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")

	query, ok := GetQueryParam(r, w, "query")
	if !ok {
		return
	}
	verbosity := GetOptionalQueryParam(r, "verbosity", domain.VerbosityBasic)

	explanation, err := h.transparencySvc.Explain(r.Context(), reportID,
		domain.ExplanationQuery(query), verbosity)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Explain failed", "error", err,
			"report_id", reportID, "query", query)
		statusCode, userMsg := mapServiceErrorToUserMessage(err)
		respondError(w, statusCode, userMsg)
		return
	}

	respondJSON(w, http.StatusOK, explanation)
}
