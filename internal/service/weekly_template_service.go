package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/templates"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

type weeklyTemplateRepository interface {
	List(ctx context.Context, filter models.WeeklyTemplateFilter) ([]models.WeeklyTemplate, int, error)
	FindByID(ctx context.Context, id string) (*models.WeeklyTemplate, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, tmpl *models.WeeklyTemplate) error
	Update(ctx context.Context, tmpl *models.WeeklyTemplate) error
	Delete(ctx context.Context, id string) error
}

type templatePresetLister interface {
	List() []templates.Preset
}

// WeeklyTemplateService manages stored weekly templates and exposes presets.
type WeeklyTemplateService struct {
	repo      weeklyTemplateRepository
	presets   templatePresetLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWeeklyTemplateService constructs the service.
func NewWeeklyTemplateService(repo weeklyTemplateRepository, presets templatePresetLister, validate *validator.Validate, logger *zap.Logger) *WeeklyTemplateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyTemplateService{repo: repo, presets: presets, validator: validate, logger: logger}
}

// List returns stored templates with pagination metadata.
func (s *WeeklyTemplateService) List(ctx context.Context, query dto.WeeklyTemplateQuery) ([]dto.WeeklyTemplateResponse, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly template query")
	}
	filter := models.WeeklyTemplateFilter{Search: strings.TrimSpace(query.Search), Page: query.Page, PageSize: query.PageSize}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weekly templates")
	}
	items := make([]dto.WeeklyTemplateResponse, 0, len(rows))
	for i := range rows {
		resp, err := templateResponse(&rows[i])
		if err != nil {
			// Rows written through this service always decode; skip anything
			// edited by hand.
			s.logger.Warn("skipping undecodable weekly template", zap.String("id", rows[i].ID), zap.Error(err))
			continue
		}
		items = append(items, *resp)
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns one stored template.
func (s *WeeklyTemplateService) Get(ctx context.Context, id string) (*dto.WeeklyTemplateResponse, error) {
	tmpl, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp, err := templateResponse(tmpl)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidTemplate.Code, appErrors.ErrInvalidTemplate.Status, "stored weekly template is invalid")
	}
	return resp, nil
}

// Create validates the layout and stores a new template.
func (s *WeeklyTemplateService) Create(ctx context.Context, req dto.WeeklyTemplateRequest, actorID string) (*dto.WeeklyTemplateResponse, error) {
	slots, err := s.validateRequest(ctx, req, "")
	if err != nil {
		return nil, err
	}
	tmpl := &models.WeeklyTemplate{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Slots:       slots,
		CreatedBy:   actorID,
	}
	if err := s.repo.Create(ctx, tmpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create weekly template")
	}
	s.logger.Info("weekly template created", zap.String("id", tmpl.ID), zap.String("name", tmpl.Name))
	return templateResponse(tmpl)
}

// Update replaces a template's name, description and layout.
func (s *WeeklyTemplateService) Update(ctx context.Context, id string, req dto.WeeklyTemplateRequest) (*dto.WeeklyTemplateResponse, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	slots, err := s.validateRequest(ctx, req, id)
	if err != nil {
		return nil, err
	}
	existing.Name = strings.TrimSpace(req.Name)
	existing.Description = req.Description
	existing.Slots = slots
	if err := s.repo.Update(ctx, existing); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update weekly template")
	}
	return templateResponse(existing)
}

// Delete removes a stored template.
func (s *WeeklyTemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "weekly template not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete weekly template")
	}
	return nil
}

// Presets lists the read-only presets loaded at startup.
func (s *WeeklyTemplateService) Presets() []dto.TemplatePresetResponse {
	if s.presets == nil {
		return []dto.TemplatePresetResponse{}
	}
	list := s.presets.List()
	out := make([]dto.TemplatePresetResponse, 0, len(list))
	for _, preset := range list {
		out = append(out, dto.TemplatePresetResponse{
			Name:        preset.Name,
			Ref:         preset.Ref(),
			Description: preset.Description,
			Slots:       preset.Template.Raw(),
			Categories:  dto.CategoryIDStrings(preset.Template.CategoryIDs()),
		})
	}
	return out
}

func (s *WeeklyTemplateService) find(ctx context.Context, id string) (*models.WeeklyTemplate, error) {
	tmpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "weekly template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly template")
	}
	return tmpl, nil
}

// validateRequest checks the payload, resolves the layout and enforces unique
// names. The canonical layout is what gets stored.
func (s *WeeklyTemplateService) validateRequest(ctx context.Context, req dto.WeeklyTemplateRequest, excludeID string) (types.JSONText, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weekly template payload")
	}
	resolved, err := calendar.ResolveTemplate(calendar.RawTemplate(req.Slots))
	if err != nil {
		return nil, engineError(err)
	}
	exists, err := s.repo.ExistsByName(ctx, strings.TrimSpace(req.Name), excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check weekly template name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "weekly template name already exists")
	}
	data, err := json.Marshal(resolved.Raw())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode weekly template")
	}
	return types.JSONText(data), nil
}

func templateResponse(tmpl *models.WeeklyTemplate) (*dto.WeeklyTemplateResponse, error) {
	var raw calendar.RawTemplate
	if len(tmpl.Slots) > 0 {
		if err := tmpl.Slots.Unmarshal(&raw); err != nil {
			return nil, err
		}
	}
	resolved, err := calendar.ResolveTemplate(raw)
	if err != nil {
		return nil, err
	}
	return &dto.WeeklyTemplateResponse{
		ID:          tmpl.ID,
		Name:        tmpl.Name,
		Description: tmpl.Description,
		Slots:       resolved.Raw(),
		Categories:  dto.CategoryIDStrings(resolved.CategoryIDs()),
		CreatedBy:   tmpl.CreatedBy,
		CreatedAt:   tmpl.CreatedAt,
		UpdatedAt:   tmpl.UpdatedAt,
	}, nil
}
