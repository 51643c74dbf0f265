package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// WeeklyTemplate is a stored day x time-slot layout. Slots holds the raw
// {day: {slot: value}} map as JSONB.
type WeeklyTemplate struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	Slots       types.JSONText `db:"slots" json:"slots"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// WeeklyTemplateFilter narrows template listings.
type WeeklyTemplateFilter struct {
	Search   string
	Page     int
	PageSize int
}
