package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/feedback-service/internal/analytics"
	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsHandler_GetFormAnalytics(t *testing.T) {
	t.Run("filters are bound", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.analytics.On("GetFormAnalytics", mock.Anything, services.AnalyticsQuery{
			FormID:    testFormID,
			Year:      2,
			Semester:  1,
			FacultyID: "not-assigned",
		}).Return(&analytics.Result{
			Form:      analytics.FormSummary{ID: testFormID, Name: "Mid-term"},
			FormStats: analytics.FormStats{TotalResponses: 12},
		}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/analytics/forms/"+testFormID+"?year=2&semester=1&faculty_id=not-assigned", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		var result analytics.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 12, result.FormStats.TotalResponses)
		sm.analytics.AssertExpectations(t)
	})

	t.Run("malformed form id", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/forms/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		sm.analytics.AssertNotCalled(t, "GetFormAnalytics", mock.Anything, mock.Anything)
	})

	t.Run("non numeric year", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/forms/"+testFormID+"?year=second", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("form not found", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.analytics.On("GetFormAnalytics", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("load form: %w", services.ErrFormNotFound))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/forms/"+testFormID, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown period", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.analytics.On("GetFormAnalytics", mock.Anything, mock.Anything).Return(nil, errors.Join(
			services.ErrPeriodNotFound,
			services.ValidationErrors{{Field: "activation_period_start", Message: "does not match any activation period"}},
		))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/analytics/forms/"+testFormID+"?activation_period_start=2024-01-01T00:00:00Z", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "activation_period_start")
	})

	t.Run("unexpected failure", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.analytics.On("GetFormAnalytics", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/forms/"+testFormID, nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}

func TestAnalyticsHandler_ComparePeriods(t *testing.T) {
	t.Run("periods split and normalized", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.analytics.On("ComparePeriods", mock.Anything, mock.MatchedBy(func(q services.ComparisonQuery) bool {
			return q.FormID == testFormID && assert.ObjectsAreEqual([]string{
				"2025-01-01T00:00:00Z",
				"2025-03-01T00:00:00+05:30",
				"2025-05-01T00:00:00Z",
			}, q.Periods)
		})).Return(&analytics.Comparison{FormID: testFormID}, nil)

		url := "/api/v1/analytics/forms/" + testFormID + "/compare" +
			"?periods=2025-01-01T00:00:00Z,2025-03-01T00:00:00+05:30&periods=2025-05-01T00:00:00Z"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		sm.analytics.AssertExpectations(t)
	})

	t.Run("no periods means all", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.analytics.On("ComparePeriods", mock.Anything, mock.MatchedBy(func(q services.ComparisonQuery) bool {
			return len(q.Periods) == 0
		})).Return(&analytics.Comparison{FormID: testFormID}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/forms/"+testFormID+"/compare", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
