package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skillforge/xp-engine/internal/domain"
)

func TestGetCurrentXP(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockLedgerService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Success",
			url:  "/api/v1/xp/current?user_id=user-1",
			setupMock: func(m *MockLedgerService) {
				m.On("GetCurrentXP", mock.Anything, "user-1").Return(&domain.CurrentXP{
					UserID:        "user-1",
					TotalXP:       1043,
					Level:         1,
					XPToNextLevel: 957,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_xp":1043`,
		},
		{
			name:           "Missing User ID",
			url:            "/api/v1/xp/current",
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Missing user_id query parameter",
		},
		{
			name: "Service Error",
			url:  "/api/v1/xp/current?user_id=user-1",
			setupMock: func(m *MockLedgerService) {
				m.On("GetCurrentXP", mock.Anything, "user-1").Return(nil, domain.ErrDatabaseError)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgGenericServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			mockLedger := new(MockLedgerService)
			tt.setupMock(mockLedger)
			handler := NewXPHandler(mockLedger, new(MockBonusService))

			req := httptest.NewRequest("GET", tt.url, nil)
			rec := httptest.NewRecorder()

			// ACT
			handler.GetCurrentXP(rec, req)

			// ASSERT
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockLedger.AssertExpectations(t)
		})
	}
}

func TestGetSummary(t *testing.T) {
	// ARRANGE
	mockLedger := new(MockLedgerService)
	mockLedger.On("GetUserXPSummary", mock.Anything, "user-1").Return(&domain.UserXPSummary{
		UserID:  "user-1",
		TotalXP: 43,
		Level:   0,
		RecentXP: []domain.RecentXP{
			{ActivityID: "ticket-4711", XPAwarded: 43},
		},
	}, nil)
	handler := NewXPHandler(mockLedger, new(MockBonusService))

	req := httptest.NewRequest("GET", "/api/v1/xp/summary?user_id=user-1", nil)
	rec := httptest.NewRecorder()

	// ACT
	handler.GetSummary(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticket-4711"`)
	mockLedger.AssertExpectations(t)
}

func TestGetStreaks(t *testing.T) {
	// ARRANGE
	mockBonus := new(MockBonusService)
	mockBonus.On("GetStreaks", mock.Anything, "user-1").Return(map[domain.StreakType]*domain.StreakData{
		domain.StreakCompletion: {UserID: "user-1", Type: domain.StreakCompletion, CurrentStreak: 4},
	}, nil)
	handler := NewXPHandler(new(MockLedgerService), mockBonus)

	req := httptest.NewRequest("GET", "/api/v1/xp/streaks?user_id=user-1", nil)
	rec := httptest.NewRecorder()

	// ACT
	handler.GetStreaks(rec, req)

	// ASSERT
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_streak":4`)
	mockBonus.AssertExpectations(t)
}

func TestGetLeaderboard(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		{Rank: 1, UserID: "gold", TotalXP: 5000, Level: 5},
		{Rank: 2, UserID: "silver", TotalXP: 3000, Level: 3},
	}

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockLedgerService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Default Limit",
			url:  "/api/v1/xp/leaderboard",
			setupMock: func(m *MockLedgerService) {
				m.On("GetLeaderboard", mock.Anything, DefaultLeaderboardLimit).Return(entries, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"user_id":"gold"`,
		},
		{
			name: "Explicit Limit",
			url:  "/api/v1/xp/leaderboard?limit=25",
			setupMock: func(m *MockLedgerService) {
				m.On("GetLeaderboard", mock.Anything, 25).Return(entries, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"rank":2`,
		},
		{
			name:           "Limit Not A Number",
			url:            "/api/v1/xp/leaderboard?limit=lots",
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidLimit,
		},
		{
			name:           "Limit Above Maximum",
			url:            "/api/v1/xp/leaderboard?limit=101",
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidLimit,
		},
		{
			name:           "Limit Below Minimum",
			url:            "/api/v1/xp/leaderboard?limit=0",
			setupMock:      func(m *MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// ARRANGE
			mockLedger := new(MockLedgerService)
			tt.setupMock(mockLedger)
			handler := NewXPHandler(mockLedger, new(MockBonusService))

			req := httptest.NewRequest("GET", tt.url, nil)
			rec := httptest.NewRecorder()

			// ACT
			handler.GetLeaderboard(rec, req)

			// ASSERT
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			mockLedger.AssertExpectations(t)
		})
	}
}
