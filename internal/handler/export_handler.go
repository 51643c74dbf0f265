package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/service"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
	"github.com/yardimli/learn-with-ai-sub000/pkg/response"
)

type calendarExporter interface {
	CreateJob(ctx context.Context, planID string, req dto.CreateExportRequest, actorID string) (*dto.ExportJobResponse, error)
	GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ExportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler exposes asynchronous calendar export endpoints.
type ExportHandler struct {
	service calendarExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.CalendarExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Create godoc
// @Summary Queue a plan export
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Plan ID"
// @Param payload body dto.CreateExportRequest true "Export payload"
// @Success 202 {object} response.Envelope
// @Router /calendars/plans/{id}/exports [post]
func (h *ExportHandler) Create(c *gin.Context) {
	var req dto.CreateExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	actorID, _ := actor(c)
	job, err := h.service.CreateJob(c.Request.Context(), c.Param("id"), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// Status godoc
// @Summary Export job status
// @Tags Exports
// @Produce json
// @Param id path string true "Export job ID"
// @Success 200 {object} response.Envelope
// @Router /calendars/exports/{id} [get]
func (h *ExportHandler) Status(c *gin.Context) {
	actorID, role := actor(c)
	status, err := h.service.GetStatus(c.Request.Context(), c.Param("id"), actorID, role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Download godoc
// @Summary Download a finished export through its signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export file"))
		return
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, download.Filename),
		"Cache-Control":       "private, no-store",
		"X-Expires-At":        download.ExpiresAt.UTC().Format(time.RFC3339),
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType(download.Format), download.File, headers)
}

func contentType(format models.ExportFormat) string {
	switch format {
	case models.ExportFormatCSV:
		return "text/csv; charset=utf-8"
	case models.ExportFormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
