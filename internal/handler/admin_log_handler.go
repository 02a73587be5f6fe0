package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/internal/models"
	appErrors "github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/errors"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/export"
	"github.com/EDRO-Technologies/Digital-Challenge-NVGU-6-32-43/pkg/response"
)

type auditService interface {
	List(ctx context.Context, limit, offset int) ([]models.AdminLog, error)
	ExportDataset(ctx context.Context, limit int) (*export.Dataset, error)
}

type datasetRenderer interface {
	Render(data *export.Dataset) ([]byte, error)
}

// AdminLogHandler serves the append-only audit trail.
type AdminLogHandler struct {
	service auditService
	csv     datasetRenderer
	pdf     datasetRenderer
}

// NewAdminLogHandler constructs the handler.
func NewAdminLogHandler(service auditService, csv, pdf datasetRenderer) *AdminLogHandler {
	return &AdminLogHandler{service: service, csv: csv, pdf: pdf}
}

// List godoc
// @Summary List audit entries
// @Tags Audit
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /admin/logs [get]
func (h *AdminLogHandler) List(c *gin.Context) {
	limit, offset := limitOffset(c)
	entries, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Export godoc
// @Summary Export audit entries as CSV or PDF
// @Tags Audit
// @Produce octet-stream
// @Param format query string false "csv or pdf (default csv)"
// @Param limit query int false "Max entries"
// @Router /admin/logs/export [get]
func (h *AdminLogHandler) Export(c *gin.Context) {
	limit, _ := limitOffset(c)
	dataset, err := h.service.ExportDataset(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	var renderer datasetRenderer
	var contentType, extension string
	switch format {
	case "csv":
		renderer, contentType, extension = h.csv, "text/csv", "csv"
	case "pdf":
		renderer, contentType, extension = h.pdf, "application/pdf", "pdf"
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
		return
	}

	payload, err := renderer.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
		return
	}

	filename := fmt.Sprintf("audit-log-%s.%s", time.Now().UTC().Format("20060102-150405"), extension)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
