package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ExportHandler struct {
	BaseHandler
	exportService services.ExportService
}

func NewExportHandler(exportService services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler:   NewBaseHandler(logger),
		exportService: exportService,
	}
}

// ExportCSV streams the form's responses as CSV
// @Summary Export responses as CSV
// @Tags exports
// @Produce text/csv
// @Param id path string true "Form ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exports/forms/{id}/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	query, ok := bindAnalyticsQuery(c, &h.BaseHandler)
	if !ok {
		return
	}

	w := newAttachmentWriter(c, exportFileName(query.FormID, "csv"), csvContentType)
	if err := h.exportService.WriteCSV(c.Request.Context(), query, w); err != nil {
		h.finishWithError(c, w, err)
	}
}

// ExportWorkbook writes the responses and a grouped summary as an Excel workbook
// @Summary Export responses as Excel
// @Tags exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Form ID"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /exports/forms/{id}/xlsx [get]
func (h *ExportHandler) ExportWorkbook(c *gin.Context) {
	query, ok := bindAnalyticsQuery(c, &h.BaseHandler)
	if !ok {
		return
	}

	w := newAttachmentWriter(c, exportFileName(query.FormID, "xlsx"), xlsxContentType)
	if err := h.exportService.WriteWorkbook(c.Request.Context(), query, w); err != nil {
		h.finishWithError(c, w, err)
	}
}

// finishWithError reports err as JSON while nothing was sent; once the body
// has started only the log records it.
func (h *ExportHandler) finishWithError(c *gin.Context, w *attachmentWriter, err error) {
	if !w.started {
		h.handleServiceError(c, err)
		return
	}
	h.LogError(c, err, "Export aborted after streaming started")
	c.Abort()
}

func exportFileName(formID, ext string) string {
	return fmt.Sprintf("feedback-%s-%s.%s", formID, time.Now().UTC().Format("20060102"), ext)
}

// attachmentWriter sets the download headers on the first write, so errors
// raised before any output can still be answered as JSON.
type attachmentWriter struct {
	c           *gin.Context
	filename    string
	contentType string
	started     bool
}

func newAttachmentWriter(c *gin.Context, filename, contentType string) *attachmentWriter {
	return &attachmentWriter{c: c, filename: filename, contentType: contentType}
}

func (w *attachmentWriter) Write(p []byte) (int, error) {
	if !w.started {
		w.started = true
		w.c.Header("Content-Type", w.contentType)
		w.c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, w.filename))
		w.c.Status(http.StatusOK)
	}
	return w.c.Writer.Write(p)
}
