package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/middleware"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

type weeklyTemplateServiceMock struct {
	created   dto.WeeklyTemplateRequest
	createdBy string
	updatedID string
	query     dto.WeeklyTemplateQuery
	err       error
}

func (m *weeklyTemplateServiceMock) List(ctx context.Context, query dto.WeeklyTemplateQuery) ([]dto.WeeklyTemplateResponse, *models.Pagination, error) {
	m.query = query
	return []dto.WeeklyTemplateResponse{{ID: "t1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, m.err
}

func (m *weeklyTemplateServiceMock) Get(ctx context.Context, id string) (*dto.WeeklyTemplateResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &dto.WeeklyTemplateResponse{ID: id}, nil
}

func (m *weeklyTemplateServiceMock) Create(ctx context.Context, req dto.WeeklyTemplateRequest, actorID string) (*dto.WeeklyTemplateResponse, error) {
	m.created = req
	m.createdBy = actorID
	if m.err != nil {
		return nil, m.err
	}
	return &dto.WeeklyTemplateResponse{ID: "t-new", Name: req.Name}, nil
}

func (m *weeklyTemplateServiceMock) Update(ctx context.Context, id string, req dto.WeeklyTemplateRequest) (*dto.WeeklyTemplateResponse, error) {
	m.updatedID = id
	if m.err != nil {
		return nil, m.err
	}
	return &dto.WeeklyTemplateResponse{ID: id, Name: req.Name}, nil
}

func (m *weeklyTemplateServiceMock) Delete(ctx context.Context, id string) error {
	return m.err
}

func (m *weeklyTemplateServiceMock) Presets() []dto.TemplatePresetResponse {
	return []dto.TemplatePresetResponse{{Name: "standard", Ref: "preset:standard"}}
}

func TestWeeklyTemplateHandlerCreate(t *testing.T) {
	mockSvc := &weeklyTemplateServiceMock{}
	handler := &WeeklyTemplateHandler{service: mockSvc}
	c, w := newGinContext(http.MethodPost, "/calendars/templates", []byte(`{"name":"Standard","slots":{"monday":{"morning":"cat_math"}}}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin-1", mockSvc.createdBy)
	assert.Equal(t, "cat_math", mockSvc.created.Slots["monday"]["morning"])
}

func TestWeeklyTemplateHandlerCreateConflict(t *testing.T) {
	handler := &WeeklyTemplateHandler{service: &weeklyTemplateServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "weekly template name already exists")}}
	c, w := newGinContext(http.MethodPost, "/calendars/templates", []byte(`{"name":"Standard","slots":{}}`))
	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestWeeklyTemplateHandlerUpdateAndGet(t *testing.T) {
	mockSvc := &weeklyTemplateServiceMock{}
	handler := &WeeklyTemplateHandler{service: mockSvc}

	c, w := newGinContext(http.MethodPut, "/calendars/templates/t1", []byte(`{"name":"Renamed","slots":{}}`))
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t1", mockSvc.updatedID)

	c, w = newGinContext(http.MethodGet, "/calendars/templates/t1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestWeeklyTemplateHandlerListAndPresets(t *testing.T) {
	mockSvc := &weeklyTemplateServiceMock{}
	handler := &WeeklyTemplateHandler{service: mockSvc}

	c, w := newGinContext(http.MethodGet, "/calendars/templates?search=std&page=1", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "std", mockSvc.query.Search)

	c, w = newGinContext(http.MethodGet, "/calendars/templates/presets", nil)
	handler.Presets(c)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "preset:standard", data[0].(map[string]interface{})["ref"])
}

func TestWeeklyTemplateHandlerDeleteNotFound(t *testing.T) {
	handler := &WeeklyTemplateHandler{service: &weeklyTemplateServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "weekly template not found")}}
	c, w := newGinContext(http.MethodDelete, "/calendars/templates/t1", nil)
	c.Params = gin.Params{{Key: "id", Value: "t1"}}
	handler.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
