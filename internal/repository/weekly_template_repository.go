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

const weeklyTemplateColumns = `id, name, description, slots, created_by, created_at, updated_at`

// WeeklyTemplateRepository persists stored weekly templates.
type WeeklyTemplateRepository struct {
	db *sqlx.DB
}

// NewWeeklyTemplateRepository constructs the repository.
func NewWeeklyTemplateRepository(db *sqlx.DB) *WeeklyTemplateRepository {
	return &WeeklyTemplateRepository{db: db}
}

// List returns templates ordered by name along with the total count.
func (r *WeeklyTemplateRepository) List(ctx context.Context, filter models.WeeklyTemplateFilter) ([]models.WeeklyTemplate, int, error) {
	base := "FROM weekly_templates"
	args := []interface{}{}
	conditions := []string{"1=1"}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY name ASC LIMIT %d OFFSET %d", weeklyTemplateColumns, base, size, offset)
	var templates []models.WeeklyTemplate
	if err := r.db.SelectContext(ctx, &templates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list weekly templates: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count weekly templates: %w", err)
	}
	return templates, total, nil
}

// FindByID loads a template by identifier.
func (r *WeeklyTemplateRepository) FindByID(ctx context.Context, id string) (*models.WeeklyTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM weekly_templates WHERE id = $1", weeklyTemplateColumns)
	var tmpl models.WeeklyTemplate
	if err := r.db.GetContext(ctx, &tmpl, query, id); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// ExistsByName reports whether another template already uses the name.
func (r *WeeklyTemplateRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM weekly_templates WHERE LOWER(name) = LOWER($1) AND ($2 = '' OR id::text <> $2))`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, excludeID); err != nil {
		return false, fmt.Errorf("check weekly template name: %w", err)
	}
	return exists, nil
}

// Create inserts a template.
func (r *WeeklyTemplateRepository) Create(ctx context.Context, tmpl *models.WeeklyTemplate) error {
	if tmpl.ID == "" {
		tmpl.ID = uuid.NewString()
	}
	if len(tmpl.Slots) == 0 {
		tmpl.Slots = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	const query = `INSERT INTO weekly_templates (id, name, description, slots, created_by, created_at, updated_at)
VALUES (:id, :name, :description, :slots, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, tmpl); err != nil {
		return fmt.Errorf("create weekly template: %w", err)
	}
	return nil
}

// Update replaces name, description and slots.
func (r *WeeklyTemplateRepository) Update(ctx context.Context, tmpl *models.WeeklyTemplate) error {
	tmpl.UpdatedAt = time.Now().UTC()
	const query = `UPDATE weekly_templates SET name = :name, description = :description, slots = :slots, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, tmpl)
	if err != nil {
		return fmt.Errorf("update weekly template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("weekly template rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a template. Saved plans keep their own template snapshot.
func (r *WeeklyTemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weekly_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete weekly template: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("weekly template rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
