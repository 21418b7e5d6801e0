package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/feedback-service/internal/services"
	"github.com/SAP-F-2025/feedback-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// maxImportSize caps uploaded spreadsheets at 10 MiB.
const maxImportSize = 10 << 20

type ImportHandler struct {
	BaseHandler
	importService services.ImportService
}

func NewImportHandler(importService services.ImportService, logger utils.Logger) *ImportHandler {
	return &ImportHandler{
		BaseHandler:   NewBaseHandler(logger),
		importService: importService,
	}
}

// ImportFacultySubjects loads faculty and subject assignments from a CSV or xlsx file
// @Summary Import faculty and subjects
// @Tags imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or xlsx file"
// @Param merge formData bool false "Keep default and section assignments side by side"
// @Success 200 {object} models.ImportSummary
// @Failure 400 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Router /imports/faculty-subjects [post]
func (h *ImportHandler) ImportFacultySubjects(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "File is required", err, err.Error())
		return
	}
	if fileHeader.Size > maxImportSize {
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, "File is too large", nil, map[string]interface{}{
			"max_bytes": maxImportSize,
			"size":      fileHeader.Size,
		})
		return
	}

	var opts services.ImportOptions
	if err := c.ShouldBind(&opts); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid import options", err, err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Failed to open file", err, err.Error())
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing faculty and subjects", "file_name", fileHeader.Filename, "size", fileHeader.Size, "merge", opts.Merge)

	summary, err := h.importService.ImportFacultySubjects(c.Request.Context(), file, fileHeader.Filename, opts)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
