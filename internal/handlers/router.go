package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerManager struct {
	formHandler      *FormHandler
	responseHandler  *ResponseHandler
	analyticsHandler *AnalyticsHandler
	exportHandler    *ExportHandler
	importHandler    *ImportHandler
	health           Pinger
	logger           utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	health Pinger,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:      NewFormHandler(serviceManager.Form(), logger),
		responseHandler:  NewResponseHandler(serviceManager.Response(), logger),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		exportHandler:    NewExportHandler(serviceManager.Export(), logger),
		importHandler:    NewImportHandler(serviceManager.Import(), logger),
		health:           health,
		logger:           logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", hm.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Form routes
		forms := v1.Group("/forms")
		{
			forms.POST("", hm.formHandler.CreateForm)
			forms.GET("", hm.formHandler.ListForms)
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.POST("/:id/activate", hm.formHandler.ActivateForm)
			forms.POST("/:id/deactivate", hm.formHandler.DeactivateForm)
			forms.GET("/:id/periods", hm.formHandler.ListPeriods)
		}

		// Response routes
		responses := v1.Group("/responses")
		{
			responses.POST("", hm.responseHandler.SubmitResponse)
			responses.GET("", hm.responseHandler.ListResponses)
			responses.GET("/:id", hm.responseHandler.GetResponse)
			responses.DELETE("/:id", hm.responseHandler.DeleteResponse)
		}

		// Analytics routes
		analytics := v1.Group("/analytics")
		{
			analytics.GET("/forms/:id", hm.analyticsHandler.GetFormAnalytics)
			analytics.GET("/forms/:id/compare", hm.analyticsHandler.ComparePeriods)
		}

		// Export routes
		exports := v1.Group("/exports")
		{
			exports.GET("/forms/:id/csv", hm.exportHandler.ExportCSV)
			exports.GET("/forms/:id/xlsx", hm.exportHandler.ExportWorkbook)
		}

		// Import routes
		imports := v1.Group("/imports")
		{
			imports.POST("/faculty-subjects", hm.importHandler.ImportFacultySubjects)
		}
	}
}

// HealthCheck reports whether the database answers
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	status := gin.H{"status": "healthy", "service": "feedback-service"}
	if hm.health == nil {
		c.JSON(http.StatusOK, status)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := hm.health.Ping(ctx); err != nil {
		hm.logger.Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": "feedback-service", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}
