package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/templates"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

type weeklyTemplateRepoStub struct {
	items   map[string]*models.WeeklyTemplate
	listErr error
}

func newWeeklyTemplateRepoStub() *weeklyTemplateRepoStub {
	return &weeklyTemplateRepoStub{items: map[string]*models.WeeklyTemplate{}}
}

func (r *weeklyTemplateRepoStub) List(ctx context.Context, filter models.WeeklyTemplateFilter) ([]models.WeeklyTemplate, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var out []models.WeeklyTemplate
	for _, item := range r.items {
		if filter.Search == "" || strings.Contains(strings.ToLower(item.Name), strings.ToLower(filter.Search)) {
			out = append(out, *item)
		}
	}
	return out, len(out), nil
}

func (r *weeklyTemplateRepoStub) FindByID(ctx context.Context, id string) (*models.WeeklyTemplate, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *item
	return &clone, nil
}

func (r *weeklyTemplateRepoStub) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	for id, item := range r.items {
		if id != excludeID && strings.EqualFold(item.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *weeklyTemplateRepoStub) Create(ctx context.Context, tmpl *models.WeeklyTemplate) error {
	tmpl.ID = uuid.NewString()
	clone := *tmpl
	r.items[tmpl.ID] = &clone
	return nil
}

func (r *weeklyTemplateRepoStub) Update(ctx context.Context, tmpl *models.WeeklyTemplate) error {
	if _, ok := r.items[tmpl.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *tmpl
	r.items[tmpl.ID] = &clone
	return nil
}

func (r *weeklyTemplateRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.items, id)
	return nil
}

type presetListStub []templates.Preset

func (s presetListStub) List() []templates.Preset { return s }

func TestWeeklyTemplateServiceCreateStoresCanonicalSlots(t *testing.T) {
	repo := newWeeklyTemplateRepoStub()
	svc := NewWeeklyTemplateService(repo, nil, nil, zap.NewNop())

	resp, err := svc.Create(context.Background(), dto.WeeklyTemplateRequest{
		Name:  " Standard week ",
		Slots: map[string]map[string]string{"Monday": {"Morning": "cat_math"}, "friday": {"noon": "PE"}},
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "Standard week", resp.Name)
	assert.Equal(t, "cat_math", resp.Slots["monday"]["morning"])
	assert.Equal(t, "pe", resp.Slots["friday"]["noon"])
	assert.Equal(t, "empty", resp.Slots["saturday"]["afternoon"])
	assert.Equal(t, []string{"math"}, resp.Categories)

	stored := repo.items[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, "admin-1", stored.CreatedBy)
	var raw calendar.RawTemplate
	require.NoError(t, stored.Slots.Unmarshal(&raw))
	assert.Len(t, raw, len(calendar.Days))
}

func TestWeeklyTemplateServiceCreateRejectsInvalidLayout(t *testing.T) {
	svc := NewWeeklyTemplateService(newWeeklyTemplateRepoStub(), nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.WeeklyTemplateRequest{
		Name:  "broken",
		Slots: map[string]map[string]string{"sunday": {"morning": "cat_math"}},
	}, "admin")
	requireAppCode(t, err, appErrors.ErrInvalidTemplate.Code)

	_, err = svc.Create(context.Background(), dto.WeeklyTemplateRequest{Slots: map[string]map[string]string{}}, "admin")
	requireAppCode(t, err, appErrors.ErrValidation.Code)
}

func TestWeeklyTemplateServiceCreateRejectsDuplicateName(t *testing.T) {
	repo := newWeeklyTemplateRepoStub()
	repo.items["t1"] = &models.WeeklyTemplate{ID: "t1", Name: "Standard", Slots: types.JSONText(`{}`)}
	svc := NewWeeklyTemplateService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.WeeklyTemplateRequest{
		Name:  "standard",
		Slots: map[string]map[string]string{},
	}, "admin")
	requireAppCode(t, err, appErrors.ErrConflict.Code)
}

func TestWeeklyTemplateServiceUpdate(t *testing.T) {
	repo := newWeeklyTemplateRepoStub()
	repo.items["t1"] = &models.WeeklyTemplate{ID: "t1", Name: "Standard", Slots: types.JSONText(`{}`)}
	svc := NewWeeklyTemplateService(repo, nil, nil, nil)

	resp, err := svc.Update(context.Background(), "t1", dto.WeeklyTemplateRequest{
		Name:  "Standard",
		Slots: map[string]map[string]string{"tuesday": {"afternoon": "review"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "review", resp.Slots["tuesday"]["afternoon"])
	assert.Empty(t, resp.Categories)

	_, err = svc.Update(context.Background(), "missing", dto.WeeklyTemplateRequest{Name: "x", Slots: map[string]map[string]string{}})
	requireAppCode(t, err, appErrors.ErrNotFound.Code)
}

func TestWeeklyTemplateServiceGetAndDelete(t *testing.T) {
	repo := newWeeklyTemplateRepoStub()
	repo.items["t1"] = &models.WeeklyTemplate{ID: "t1", Name: "Standard", Slots: types.JSONText(`{"monday":{"noon":"cat_art"}}`)}
	svc := NewWeeklyTemplateService(repo, nil, nil, nil)

	resp, err := svc.Get(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"art"}, resp.Categories)

	require.NoError(t, svc.Delete(context.Background(), "t1"))
	_, err = svc.Get(context.Background(), "t1")
	requireAppCode(t, err, appErrors.ErrNotFound.Code)
	requireAppCode(t, svc.Delete(context.Background(), "t1"), appErrors.ErrNotFound.Code)
}

func TestWeeklyTemplateServiceList(t *testing.T) {
	repo := newWeeklyTemplateRepoStub()
	repo.items["t1"] = &models.WeeklyTemplate{ID: "t1", Name: "Standard", Slots: types.JSONText(`{}`)}
	repo.items["t2"] = &models.WeeklyTemplate{ID: "t2", Name: "Corrupt", Slots: types.JSONText(`{"someday":{}}`)}
	svc := NewWeeklyTemplateService(repo, nil, nil, nil)

	items, pagination, err := svc.List(context.Background(), dto.WeeklyTemplateQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "t1", items[0].ID)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 2, pagination.TotalCount)

	repo.listErr = errors.New("db down")
	_, _, err = svc.List(context.Background(), dto.WeeklyTemplateQuery{})
	requireAppCode(t, err, appErrors.ErrInternal.Code)
}

func TestWeeklyTemplateServicePresets(t *testing.T) {
	tmpl, err := calendar.ResolveTemplate(calendar.RawTemplate{"monday": {"morning": "cat_math"}})
	require.NoError(t, err)
	svc := NewWeeklyTemplateService(newWeeklyTemplateRepoStub(), presetListStub{{Name: "standard", Description: "Default", Template: tmpl}}, nil, nil)

	presets := svc.Presets()
	require.Len(t, presets, 1)
	assert.Equal(t, "preset:standard", presets[0].Ref)
	assert.Equal(t, []string{"math"}, presets[0].Categories)
	assert.Equal(t, "cat_math", presets[0].Slots["monday"]["morning"])

	assert.Empty(t, NewWeeklyTemplateService(nil, nil, nil, nil).Presets())
}
