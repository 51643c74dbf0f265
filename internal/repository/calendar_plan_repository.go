package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

const (
	calendarPlanSummaryColumns = `id, name, template_ref, version, status, start_year, start_month, end_year, end_month, created_by, created_at, updated_at`
	calendarPlanColumns        = `id, name, template_ref, version, status, start_year, start_month, end_year, end_month, template, grid, usage, meta, created_by, created_at, updated_at`
)

// CalendarPlanRepository persists versioned calendar plans.
type CalendarPlanRepository struct {
	db *sqlx.DB
}

// NewCalendarPlanRepository constructs repository.
func NewCalendarPlanRepository(db *sqlx.DB) *CalendarPlanRepository {
	return &CalendarPlanRepository{db: db}
}

func (r *CalendarPlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan assigning the next version for its template reference.
func (r *CalendarPlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.CalendarPlan) error {
	if plan == nil {
		return fmt.Errorf("calendar plan payload is nil")
	}
	if plan.TemplateRef == "" {
		return fmt.Errorf("template_ref is required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.CalendarPlanStatusDraft
	}
	if len(plan.Meta) == 0 {
		plan.Meta = types.JSONText(`{}`)
	}
	if len(plan.Usage) == 0 {
		plan.Usage = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM calendar_plans WHERE template_ref = $1`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.TemplateRef); err != nil {
		return fmt.Errorf("compute next calendar plan version: %w", err)
	}

	const insertQuery = `
INSERT INTO calendar_plans (id, name, template_ref, version, status, start_year, start_month, end_year, end_month, template, grid, usage, meta, created_by, created_at, updated_at)
VALUES (:id, :name, :template_ref, :version, :status, :start_year, :start_month, :end_year, :end_month, :template, :grid, :usage, :meta, :created_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		return fmt.Errorf("insert calendar plan: %w", err)
	}
	return nil
}

// List returns plan summaries, newest version first, with the total count.
func (r *CalendarPlanRepository) List(ctx context.Context, filter models.CalendarPlanFilter) ([]models.CalendarPlanSummary, int, error) {
	base := "FROM calendar_plans"
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.TemplateRef != "" {
		conditions = append(conditions, fmt.Sprintf("template_ref = $%d", len(args)+1))
		args = append(args, filter.TemplateRef)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC, version DESC LIMIT %d OFFSET %d", calendarPlanSummaryColumns, base, size, offset)
	var plans []models.CalendarPlanSummary
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list calendar plans: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count calendar plans: %w", err)
	}
	return plans, total, nil
}

// FindByID loads a plan with its grid.
func (r *CalendarPlanRepository) FindByID(ctx context.Context, id string) (*models.CalendarPlan, error) {
	query := fmt.Sprintf("SELECT %s FROM calendar_plans WHERE id = $1", calendarPlanColumns)
	var plan models.CalendarPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Delete removes a plan version that is still a draft. A missing plan or one
// that has left DRAFT yields sql.ErrNoRows.
func (r *CalendarPlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM calendar_plans WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, models.CalendarPlanStatusDraft)
	if err != nil {
		return fmt.Errorf("delete calendar plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("calendar plan rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus updates the status (and optionally meta) of a plan.
func (r *CalendarPlanRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.CalendarPlanStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE calendar_plans SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE calendar_plans SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update calendar plan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("calendar plan status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchivePublished archives every published plan of a template reference
// except keepID, so one published version exists per reference.
func (r *CalendarPlanRepository) ArchivePublished(ctx context.Context, exec sqlx.ExtContext, templateRef, keepID string) error {
	const query = `UPDATE calendar_plans SET status = $1, updated_at = $2 WHERE template_ref = $3 AND status = $4 AND id <> $5`
	if _, err := r.exec(exec).ExecContext(ctx, query, models.CalendarPlanStatusArchived, time.Now().UTC(), templateRef, models.CalendarPlanStatusPublished, keepID); err != nil {
		return fmt.Errorf("archive published calendar plans: %w", err)
	}
	return nil
}
