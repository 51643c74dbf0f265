package dto

import "github.com/yardimli/learn-with-ai-sub000/internal/models"

// CreateExportRequest captures POST /calendars/plans/:id/exports.
type CreateExportRequest struct {
	Format       models.ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	IncludeEmpty bool                `json:"includeEmpty"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	PlanID   string              `json:"planId"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes job progress metadata.
type ExportStatusResponse struct {
	ID        string              `json:"id"`
	PlanID    string              `json:"planId"`
	Format    models.ExportFormat `json:"format"`
	Status    models.ExportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
