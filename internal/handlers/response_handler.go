package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger),
		responseService: responseService,
	}
}

// SubmitResponse records a student's feedback
// @Summary Submit feedback
// @Tags responses
// @Accept json
// @Produce json
// @Param response body services.SubmitResponseRequest true "Submission"
// @Success 201 {object} models.Response
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	var req services.SubmitResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	response, err := h.responseService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Feedback submitted", "response_id", response.ID, "form_id", response.FormID)
	c.JSON(http.StatusCreated, response)
}

// ListResponses lists raw responses of one form
// @Summary List responses
// @Tags responses
// @Produce json
// @Param form_id query string true "Form ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort_order query string false "asc or desc on submission time"
// @Success 200 {object} services.ListResponsesResult
// @Failure 400 {object} ErrorResponse
// @Router /responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	var query services.ListResponsesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	query.FormID = c.Query("form_id")
	query.PeriodStart = normalizeTimestamp(query.PeriodStart)

	result, err := h.responseService.List(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResponse retrieves one response
// @Summary Get response
// @Tags responses
// @Produce json
// @Param id path string true "Response ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [get]
func (h *ResponseHandler) GetResponse(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return
	}

	response, err := h.responseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteResponse removes a response
// @Summary Delete response
// @Tags responses
// @Produce json
// @Param id path string true "Response ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /responses/{id} [delete]
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.responseService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Response deleted", "response_id", id)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Response deleted successfully"})
}
