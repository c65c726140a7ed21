package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quizgen/quizgen-backend/internal/middleware"
	"github.com/quizgen/quizgen-backend/internal/service"
)

// ExportHandler serves quiz documents for download.
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export godoc
// GET /api/v1/sessions/:id/export?format=pdf|xlsx
// Defaults to PDF.
func (h *ExportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.FormatPDF))))

	file, err := h.exportService.Export(middleware.GetSessionID(c), format)
	if err != nil {
		failWith(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
