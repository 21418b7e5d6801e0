package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/feedback-service/internal/models"
	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const submitBody = `{
	"form_id": "11111111-1111-4111-8111-111111111111",
	"student_name": "Ravi",
	"roll_number": "21cs001",
	"course_id": "22222222-2222-4222-8222-222222222222",
	"year": 2,
	"semester": 1,
	"subjects": [{"subject_id": "44444444-4444-4444-8444-444444444441", "answers": [4, "Right", "Clear"]}]
}`

func TestResponseHandler_SubmitResponse(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.response.On("Submit", mock.Anything, mock.MatchedBy(func(req *services.SubmitResponseRequest) bool {
			return req.FormID == testFormID && req.RollNumber == "21cs001" &&
				len(req.Subjects) == 1 && len(req.Subjects[0].Answers) == 3
		})).Return(&models.Response{ID: testResponseID, FormID: testFormID, RollNumber: "21CS001"}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/responses", bytes.NewBufferString(submitBody)))

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp models.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, testResponseID, resp.ID)
		assert.Equal(t, "21CS001", resp.RollNumber)
	})

	t.Run("malformed json", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/responses", bytes.NewBufferString(`[`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		sm.response.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	})

	t.Run("duplicate submission", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.response.On("Submit", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateSubmission)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/responses", bytes.NewBufferString(submitBody)))

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("inactive form", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.response.On("Submit", mock.Anything, mock.Anything).
			Return(nil, services.NewBusinessRuleError("form_active", "feedback form is not accepting submissions", map[string]interface{}{"form_id": testFormID}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/responses", bytes.NewBufferString(submitBody)))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "feedback form is not accepting submissions", resp.Message)
	})
}

func TestResponseHandler_ListResponses(t *testing.T) {
	sm := newMockServiceManager()
	router := setupRouter(sm, nil)
	sm.response.On("List", mock.Anything, mock.MatchedBy(func(q services.ListResponsesQuery) bool {
		return q.FormID == testFormID &&
			q.Page == 2 && q.Limit == 5 && q.SortOrder == "asc" &&
			q.PeriodStart == "2025-01-01T00:00:00+05:30"
	})).Return(&services.ListResponsesResult{Total: 7, Page: 2, Limit: 5}, nil)

	// An unescaped '+' arrives as a space after query decoding.
	url := "/api/v1/responses?form_id=" + testFormID +
		"&page=2&limit=5&sort_order=asc&activation_period_start=2025-01-01T00:00:00+05:30"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":7`)
	sm.response.AssertExpectations(t)
}

func TestResponseHandler_DeleteResponse(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.response.On("Delete", mock.Anything, testResponseID).Return(nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/responses/"+testResponseID, nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Response deleted successfully")
	})

	t.Run("missing", func(t *testing.T) {
		sm := newMockServiceManager()
		router := setupRouter(sm, nil)
		sm.response.On("Delete", mock.Anything, testResponseID).Return(services.ErrResponseNotFound)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/responses/"+testResponseID, nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Response not found")
	})
}
