package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

// CategoryRepository resolves lesson category display names.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// NamesByIDs maps category ids to names. Unknown ids are absent from the result.
func (r *CategoryRepository) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	const query = `SELECT id, name FROM categories WHERE id = ANY($1)`
	var rows []models.Category
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list category names: %w", err)
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}
