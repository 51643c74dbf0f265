package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/service"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
	"github.com/yardimli/learn-with-ai-sub000/pkg/response"
)

type weeklyTemplateManager interface {
	List(ctx context.Context, query dto.WeeklyTemplateQuery) ([]dto.WeeklyTemplateResponse, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.WeeklyTemplateResponse, error)
	Create(ctx context.Context, req dto.WeeklyTemplateRequest, actorID string) (*dto.WeeklyTemplateResponse, error)
	Update(ctx context.Context, id string, req dto.WeeklyTemplateRequest) (*dto.WeeklyTemplateResponse, error)
	Delete(ctx context.Context, id string) error
	Presets() []dto.TemplatePresetResponse
}

// WeeklyTemplateHandler exposes weekly template endpoints.
type WeeklyTemplateHandler struct {
	service weeklyTemplateManager
}

// NewWeeklyTemplateHandler constructs the handler.
func NewWeeklyTemplateHandler(svc *service.WeeklyTemplateService) *WeeklyTemplateHandler {
	return &WeeklyTemplateHandler{service: svc}
}

// List godoc
// @Summary List stored weekly templates
// @Tags Templates
// @Produce json
// @Param search query string false "Name filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /calendars/templates [get]
func (h *WeeklyTemplateHandler) List(c *gin.Context) {
	var query dto.WeeklyTemplateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Presets godoc
// @Summary List built-in template presets
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /calendars/templates/presets [get]
func (h *WeeklyTemplateHandler) Presets(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Presets(), nil)
}

// Get godoc
// @Summary Get a weekly template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /calendars/templates/{id} [get]
func (h *WeeklyTemplateHandler) Get(c *gin.Context) {
	tmpl, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl, nil)
}

// Create godoc
// @Summary Create a weekly template
// @Tags Templates
// @Accept json
// @Produce json
// @Param payload body dto.WeeklyTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /calendars/templates [post]
func (h *WeeklyTemplateHandler) Create(c *gin.Context) {
	var req dto.WeeklyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	actorID, _ := actor(c)
	tmpl, err := h.service.Create(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tmpl)
}

// Update godoc
// @Summary Replace a weekly template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body dto.WeeklyTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Router /calendars/templates/{id} [put]
func (h *WeeklyTemplateHandler) Update(c *gin.Context) {
	var req dto.WeeklyTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	tmpl, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tmpl, nil)
}

// Delete godoc
// @Summary Delete a weekly template
// @Tags Templates
// @Param id path string true "Template ID"
// @Success 204
// @Router /calendars/templates/{id} [delete]
func (h *WeeklyTemplateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
