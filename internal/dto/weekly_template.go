package dto

import (
	"time"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
)

// WeeklyTemplateRequest creates or replaces a stored weekly template.
type WeeklyTemplateRequest struct {
	Name        string                       `json:"name" validate:"required,max=120"`
	Description *string                      `json:"description" validate:"omitempty,max=500"`
	Slots       map[string]map[string]string `json:"slots" validate:"required"`
}

// WeeklyTemplateQuery filters template listings.
type WeeklyTemplateQuery struct {
	Search   string `form:"search" json:"search"`
	Page     int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" json:"pageSize" validate:"omitempty,min=1,max=100"`
}

// WeeklyTemplateResponse returns a template with its slots in canonical form.
type WeeklyTemplateResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description,omitempty"`
	Slots       calendar.RawTemplate `json:"slots"`
	Categories  []string             `json:"categories"`
	CreatedBy   string               `json:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// TemplatePresetResponse describes a read-only preset loaded from disk.
type TemplatePresetResponse struct {
	Name        string               `json:"name"`
	Ref         string               `json:"ref"`
	Description string               `json:"description,omitempty"`
	Slots       calendar.RawTemplate `json:"slots"`
	Categories  []string             `json:"categories"`
}

// CategoryIDStrings converts engine category ids for JSON output.
func CategoryIDStrings(ids []calendar.CategoryID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
