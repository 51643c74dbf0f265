package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

// LessonRepository reads the lesson pool consumed by the calendar generator.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListPool returns every lesson of the given categories in pool order: oldest
// first, then by id. The requested range is not applied here; the allocator
// needs out-of-range lessons to tell an empty category apart from an empty
// period.
func (r *LessonRepository) ListPool(ctx context.Context, categoryIDs []string) ([]models.Lesson, error) {
	if len(categoryIDs) == 0 {
		return []models.Lesson{}, nil
	}
	const query = `SELECT id, category_id, title, year, month, week, created_at
FROM lessons
WHERE category_id = ANY($1)
ORDER BY created_at ASC, id ASC`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, pq.Array(categoryIDs)); err != nil {
		return nil, fmt.Errorf("list lesson pool: %w", err)
	}
	return lessons, nil
}
