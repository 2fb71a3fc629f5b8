package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skillforge/xp-engine/internal/domain"
)

func TestGenerateReport(t *testing.T) {
	report := &domain.TransparencyReport{
		ID:         "rep-1",
		UserID:     "user-1",
		ActivityID: "ticket-4711",
		RecordID:   "rec-1",
		TotalXP:    43,
	}

	tests := []struct {
		name           string
		reqBody        interface{}
		setupMock      func(*MockTransparencyService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "Success",
			reqBody: GenerateReportRequest{UserID: "user-1", ActivityID: "ticket-4711"},
			setupMock: func(m *MockTransparencyService) {
				m.On("Generate", mock.Anything, "user-1", "ticket-4711").Return(report, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"id":"rep-1"`,
		},
		{
			name:           "Invalid JSON",
			reqBody:        "invalid json",
			setupMock:      func(m *MockTransparencyService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name:           "Missing Activity ID",
			reqBody:        GenerateReportRequest{UserID: "user-1"},
			setupMock:      func(m *MockTransparencyService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "This field is required",
		},
		{
			name:    "No Award For Activity",
			reqBody: GenerateReportRequest{UserID: "user-1", ActivityID: "never-awarded"},
			setupMock: func(m *MockTransparencyService) {
				m.On("Generate", mock.Anything, "user-1", "never-awarded").Return(nil, domain.ErrRecordNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgRecordNotFoundHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			mockSvc := new(MockTransparencyService)
			tt.setupMock(mockSvc)
			handler := NewTransparencyHandler(mockSvc)

			var body []byte
			if s, ok := tt.reqBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.reqBody)
			}

			req := httptest.NewRequest("POST", "/api/v1/transparency/reports", bytes.NewBuffer(body))
			rec := httptest.NewRecorder()

			// ACT
			handler.Generate(rec, req)

			// ASSERT
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestGetTransparencyReport(t *testing.T) {
	tests := []struct {
		name           string
		reportID       string
		setupMock      func(*MockTransparencyService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "Success",
			reportID: "rep-1",
			setupMock: func(m *MockTransparencyService) {
				m.On("GetReport", mock.Anything, "rep-1").Return(&domain.TransparencyReport{
					ID:      "rep-1",
					UserID:  "user-1",
					TotalXP: 43,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_xp":43`,
		},
		{
			name:     "Not Found",
			reportID: "rep-missing",
			setupMock: func(m *MockTransparencyService) {
				m.On("GetReport", mock.Anything, "rep-missing").Return(nil, domain.ErrReportNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgReportNotFoundHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			mockSvc := new(MockTransparencyService)
			tt.setupMock(mockSvc)
			handler := NewTransparencyHandler(mockSvc)

			// Route through chi to populate the URL param
			r := chi.NewRouter()
			r.Get("/transparency/reports/{id}", handler.GetReport)

			req := httptest.NewRequest("GET", "/transparency/reports/"+tt.reportID, nil)
			rec := httptest.NewRecorder()

			// ACT
			r.ServeHTTP(rec, req)

			// ASSERT
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestExplainReport(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockTransparencyService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Basic Verbosity Is The Default",
			url:  "/transparency/reports/rep-1/explain?query=why_this_score",
			setupMock: func(m *MockTransparencyService) {
				m.On("Explain", mock.Anything, "rep-1", domain.QueryWhyThisScore, domain.VerbosityBasic).
					Return(&domain.ExplanationResponse{
						ReportID:  "rep-1",
						Query:     domain.QueryWhyThisScore,
						Verbosity: domain.VerbosityBasic,
						Summary:   "Your overall performance score is 80 (Good).",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"summary":"Your overall performance score is 80 (Good)."`,
		},
		{
			name: "Detailed Verbosity Passed Through",
			url:  "/transparency/reports/rep-1/explain?query=how_to_improve&verbosity=detailed",
			setupMock: func(m *MockTransparencyService) {
				m.On("Explain", mock.Anything, "rep-1", domain.QueryHowToImprove, domain.VerbosityDetailed).
					Return(&domain.ExplanationResponse{
						ReportID:  "rep-1",
						Query:     domain.QueryHowToImprove,
						Verbosity: domain.VerbosityDetailed,
						Summary:   "Closest missed bonus: Quality Streak.",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Quality Streak",
		},
		{
			name:           "Missing Query Parameter",
			url:            "/transparency/reports/rep-1/explain",
			setupMock:      func(m *MockTransparencyService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Missing query query parameter",
		},
		{
			name: "Unknown Query",
			url:  "/transparency/reports/rep-1/explain?query=why_me",
			setupMock: func(m *MockTransparencyService) {
				m.On("Explain", mock.Anything, "rep-1", domain.ExplanationQuery("why_me"), domain.VerbosityBasic).
					Return(nil, domain.ErrInvalidInput)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   domain.ErrInvalidInput.Error(),
		},
		{
			name: "Report Not Found",
			url:  "/transparency/reports/rep-missing/explain?query=why_this_score",
			setupMock: func(m *MockTransparencyService) {
				m.On("Explain", mock.Anything, "rep-missing", domain.QueryWhyThisScore, domain.VerbosityBasic).
					Return(nil, domain.ErrReportNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgReportNotFoundHTTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			mockSvc := new(MockTransparencyService)
			tt.setupMock(mockSvc)
			handler := NewTransparencyHandler(mockSvc)

			r := chi.NewRouter()
			r.Get("/transparency/reports/{id}/explain", handler.Explain)

			req := httptest.NewRequest("GET", tt.url, nil)
			rec := httptest.NewRecorder()

			// ACT
			r.ServeHTTP(rec, req)

			// ASSERT
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockSvc.AssertExpectations(t)
		})
	}
}
