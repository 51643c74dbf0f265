package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
)

func TestCalendarPlanRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM calendar_plans WHERE template_ref = $1")).
		WithArgs("preset:standard").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO calendar_plans")).
		WithArgs(sqlmock.AnyArg(), "Spring", "preset:standard", 3, string(models.CalendarPlanStatusDraft),
			2025, 1, 2025, 6, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	plan := &models.CalendarPlan{
		Name:        "Spring",
		TemplateRef: "preset:standard",
		StartYear:   2025,
		StartMonth:  1,
		EndYear:     2025,
		EndMonth:    6,
		Template:    types.JSONText(`{}`),
		Grid:        types.JSONText(`[]`),
		CreatedBy:   "admin-1",
	}
	require.NoError(t, repo.CreateVersioned(context.Background(), nil, plan))
	assert.Equal(t, 3, plan.Version)
	assert.NotEmpty(t, plan.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarPlanRepositoryCreateVersionedRequiresRef(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	assert.Error(t, repo.CreateVersioned(context.Background(), nil, &models.CalendarPlan{}))
	assert.Error(t, repo.CreateVersioned(context.Background(), nil, nil))
}

func TestCalendarPlanRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	status := models.CalendarPlanStatusPublished
	rows := sqlmock.NewRows([]string{"id", "name", "template_ref", "version", "status", "start_year", "start_month", "end_year", "end_month", "created_by", "created_at", "updated_at"}).
		AddRow("plan-1", "Spring", "inline", 1, string(status), 2025, 1, 2025, 6, "admin-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_plans WHERE 1=1 AND template_ref = $1 AND status = $2 ORDER BY created_at DESC, version DESC LIMIT 20 OFFSET 0")).
		WithArgs("inline", status).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM calendar_plans WHERE 1=1 AND template_ref = $1 AND status = $2")).
		WithArgs("inline", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	plans, total, err := repo.List(context.Background(), models.CalendarPlanFilter{TemplateRef: "inline", Status: &status})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "plan-1", plans[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarPlanRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM calendar_plans WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCalendarPlanRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calendar_plans WHERE id = $1 AND status = $2")).
		WithArgs("missing", models.CalendarPlanStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
}

func TestCalendarPlanRepositoryDeleteOnlyDrafts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calendar_plans WHERE id = $1 AND status = $2")).
		WithArgs("plan-1", models.CalendarPlanStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "plan-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarPlanRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE calendar_plans SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(models.CalendarPlanStatusPublished, sqlmock.AnyArg(), "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE calendar_plans SET status = $1, meta = $2, updated_at = $3 WHERE id = $4")).
		WithArgs(models.CalendarPlanStatusArchived, sqlmock.AnyArg(), sqlmock.AnyArg(), "plan-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), nil, "plan-1", models.CalendarPlanStatusPublished, nil))
	err := repo.UpdateStatus(context.Background(), nil, "plan-2", models.CalendarPlanStatusArchived, types.JSONText(`{"reason":"x"}`))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarPlanRepositoryArchivePublished(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCalendarPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE calendar_plans SET status = $1, updated_at = $2 WHERE template_ref = $3 AND status = $4 AND id <> $5")).
		WithArgs(models.CalendarPlanStatusArchived, sqlmock.AnyArg(), "inline", models.CalendarPlanStatusPublished, "plan-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.ArchivePublished(context.Background(), nil, "inline", "plan-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
