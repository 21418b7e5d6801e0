package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
	}
}

// GetFormAnalytics returns faculty-scoped analytics of a form
// @Summary Form analytics
// @Tags analytics
// @Produce json
// @Param id path string true "Form ID"
// @Param course_id query string false "Course"
// @Param year query int false "Year"
// @Param semester query int false "Semester"
// @Param section_id query string false "Section"
// @Param subject_id query string false "Subject"
// @Param faculty_id query string false "Faculty, not-assigned or overall"
// @Param activation_period_start query string false "Start of the activation period (RFC 3339)"
// @Success 200 {object} analytics.Result
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/forms/{id} [get]
func (h *AnalyticsHandler) GetFormAnalytics(c *gin.Context) {
	query, ok := bindAnalyticsQuery(c, &h.BaseHandler)
	if !ok {
		return
	}

	result, err := h.analyticsService.GetFormAnalytics(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ComparePeriods compares analytics across activation periods
// @Summary Compare activation periods
// @Tags analytics
// @Produce json
// @Param id path string true "Form ID"
// @Param periods query []string false "Period starts (RFC 3339), repeated or comma separated; all periods when omitted"
// @Success 200 {object} analytics.Comparison
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /analytics/forms/{id}/compare [get]
func (h *AnalyticsHandler) ComparePeriods(c *gin.Context) {
	base, ok := bindAnalyticsQuery(c, &h.BaseHandler)
	if !ok {
		return
	}

	query := services.ComparisonQuery{AnalyticsQuery: base}
	for _, p := range splitListQuery(c, "periods") {
		query.Periods = append(query.Periods, normalizeTimestamp(p))
	}

	comparison, err := h.analyticsService.ComparePeriods(c.Request.Context(), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// bindAnalyticsQuery reads the form id and filters shared by analytics and exports.
func bindAnalyticsQuery(c *gin.Context, h *BaseHandler) (services.AnalyticsQuery, bool) {
	var query services.AnalyticsQuery
	id := ParseUUIDParam(c, "id")
	if id == "" {
		return query, false
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return query, false
	}
	query.FormID = id
	query.PeriodStart = normalizeTimestamp(query.PeriodStart)
	return query, true
}

// normalizeTimestamp restores the '+' of a UTC offset that query decoding
// turned into a space.
func normalizeTimestamp(v string) string {
	return strings.ReplaceAll(strings.TrimSpace(v), " ", "+")
}
