package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/middleware"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/service"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
	"github.com/yardimli/learn-with-ai-sub000/pkg/response"
)

type calendarGenerator interface {
	Generate(ctx context.Context, req dto.GenerateCalendarRequest) (*dto.CalendarPreviewResponse, error)
	Save(ctx context.Context, req dto.SaveCalendarRequest, actorID string) (*models.CalendarPlanSummary, error)
	List(ctx context.Context, query dto.CalendarPlanQuery) ([]models.CalendarPlanSummary, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.CalendarPlanDetail, bool, error)
	Publish(ctx context.Context, id string) (*models.CalendarPlanSummary, error)
	Delete(ctx context.Context, id string) error
}

// CalendarHandler exposes lesson calendar endpoints.
type CalendarHandler struct {
	service calendarGenerator
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Generate godoc
// @Summary Preview a lesson calendar
// @Description Resolves the weekly template (stored, preset or inline), loads the lesson pool and allocates every cell of the range. The proposal can be saved until expiresAt.
// @Tags Calendars
// @Accept json
// @Produce json
// @Param payload body dto.GenerateCalendarRequest true "Generate calendar payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendars/generate [post]
func (h *CalendarHandler) Generate(c *gin.Context) {
	var req dto.GenerateCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar payload"))
		return
	}
	preview, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Save godoc
// @Summary Save a previewed calendar as a plan version
// @Tags Calendars
// @Accept json
// @Produce json
// @Param payload body dto.SaveCalendarRequest true "Save calendar payload"
// @Success 201 {object} response.Envelope
// @Router /calendars/plans [post]
func (h *CalendarHandler) Save(c *gin.Context) {
	var req dto.SaveCalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save payload"))
		return
	}
	actorID, _ := actor(c)
	plan, err := h.service.Save(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan)
}

// List godoc
// @Summary List saved calendar plans
// @Tags Calendars
// @Produce json
// @Param templateRef query string false "Template reference"
// @Param status query string false "DRAFT, PUBLISHED or ARCHIVED"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /calendars/plans [get]
func (h *CalendarHandler) List(c *gin.Context) {
	var query dto.CalendarPlanQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	plans, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, pagination)
}

// Get godoc
// @Summary Get a saved calendar plan with its grid
// @Tags Calendars
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /calendars/plans/{id} [get]
func (h *CalendarHandler) Get(c *gin.Context) {
	plan, hit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, plan, nil, middleware.ExtractMeta(c))
}

// Publish godoc
// @Summary Publish a plan version
// @Description Archives the previously published plan for the same template reference.
// @Tags Calendars
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /calendars/plans/{id}/publish [post]
func (h *CalendarHandler) Publish(c *gin.Context) {
	plan, err := h.service.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Delete godoc
// @Summary Delete a draft plan
// @Tags Calendars
// @Param id path string true "Plan ID"
// @Success 204
// @Router /calendars/plans/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
