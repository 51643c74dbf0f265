package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// CalendarPlanStatus represents lifecycle phases for saved calendars.
type CalendarPlanStatus string

const (
	CalendarPlanStatusDraft     CalendarPlanStatus = "DRAFT"
	CalendarPlanStatusPublished CalendarPlanStatus = "PUBLISHED"
	CalendarPlanStatusArchived  CalendarPlanStatus = "ARCHIVED"
)

// CalendarPlan is a persisted allocation result. Versions are numbered per
// TemplateRef ("template:<id>", "preset:<name>" or "inline").
type CalendarPlan struct {
	ID          string             `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	TemplateRef string             `db:"template_ref" json:"template_ref"`
	Version     int                `db:"version" json:"version"`
	Status      CalendarPlanStatus `db:"status" json:"status"`
	StartYear   int                `db:"start_year" json:"start_year"`
	StartMonth  int                `db:"start_month" json:"start_month"`
	EndYear     int                `db:"end_year" json:"end_year"`
	EndMonth    int                `db:"end_month" json:"end_month"`
	Template    types.JSONText     `db:"template" json:"template"`
	Grid        types.JSONText     `db:"grid" json:"grid"`
	Usage       types.JSONText     `db:"usage" json:"usage"`
	Meta        types.JSONText     `db:"meta" json:"meta"`
	CreatedBy   string             `db:"created_by" json:"created_by"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// CalendarPlanSummary is the list projection of a plan; grid and usage are
// left out.
type CalendarPlanSummary struct {
	ID          string             `db:"id" json:"id"`
	Name        string             `db:"name" json:"name"`
	TemplateRef string             `db:"template_ref" json:"templateRef"`
	Version     int                `db:"version" json:"version"`
	Status      CalendarPlanStatus `db:"status" json:"status"`
	StartYear   int                `db:"start_year" json:"startYear"`
	StartMonth  int                `db:"start_month" json:"startMonth"`
	EndYear     int                `db:"end_year" json:"endYear"`
	EndMonth    int                `db:"end_month" json:"endMonth"`
	CreatedBy   string             `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updatedAt"`
}

// CalendarPlanFilter narrows plan listings.
type CalendarPlanFilter struct {
	TemplateRef string
	Status      *CalendarPlanStatus
	Page        int
	PageSize    int
}
