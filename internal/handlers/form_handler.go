package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
}

func NewFormHandler(formService services.FormService, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger),
		formService: formService,
	}
}

// CreateForm creates a new feedback form
// @Summary Create feedback form
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form definition"
// @Success 201 {object} models.FeedbackForm
// @Failure 400 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	form, err := h.formService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Feedback form created", "form_id", form.ID)
	c.JSON(http.StatusCreated, form)
}

// ListForms lists feedback forms
// @Summary List feedback forms
// @Tags forms
// @Produce json
// @Param is_active query bool false "Only active or inactive forms"
// @Param search query string false "Name contains"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} services.ListFormsResult
// @Router /forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	var query services.ListFormsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	result, err := h.formService.List(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetForm retrieves a feedback form by ID
// @Summary Get feedback form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} models.FeedbackForm
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return
	}

	form, err := h.formService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// ActivateForm opens a new activation period
// @Summary Activate feedback form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} models.FeedbackForm
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/activate [post]
func (h *FormHandler) ActivateForm(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return
	}

	form, err := h.formService.Activate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Feedback form activated", "form_id", id)
	c.JSON(http.StatusOK, form)
}

// DeactivateForm closes the open activation period
// @Summary Deactivate feedback form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} models.FeedbackForm
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /forms/{id}/deactivate [post]
func (h *FormHandler) DeactivateForm(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return
	}

	form, err := h.formService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Feedback form deactivated", "form_id", id)
	c.JSON(http.StatusOK, form)
}

// ListPeriods lists the activation history of a form
// @Summary List activation periods
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {array} models.ActivationPeriod
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/periods [get]
func (h *FormHandler) ListPeriods(c *gin.Context) {
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return
	}

	periods, err := h.formService.ListPeriods(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, periods)
}
