package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/yardimli/learn-with-ai-sub000/internal/calendar"
	"github.com/yardimli/learn-with-ai-sub000/internal/dto"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/templates"
	"github.com/yardimli/learn-with-ai-sub000/pkg/cache"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

const (
	templateRefInline       = "inline"
	templateRefStoredPrefix = "template:"
)

type lessonPoolReader interface {
	ListPool(ctx context.Context, categoryIDs []string) ([]models.Lesson, error)
}

type categoryNameReader interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type weeklyTemplateReader interface {
	FindByID(ctx context.Context, id string) (*models.WeeklyTemplate, error)
}

type templatePresetReader interface {
	Get(name string) (templates.Preset, bool)
}

type calendarPlanRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.CalendarPlan) error
	List(ctx context.Context, filter models.CalendarPlanFilter) ([]models.CalendarPlanSummary, int, error)
	FindByID(ctx context.Context, id string) (*models.CalendarPlan, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.CalendarPlanStatus, meta types.JSONText) error
	ArchivePublished(ctx context.Context, exec sqlx.ExtContext, templateRef, keepID string) error
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type allocationRecorder interface {
	ObserveAllocation(stats *calendar.Stats, duration time.Duration, err error)
	ObserveDBQuery(label string, duration time.Duration)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// CalendarServiceConfig governs generator behaviour.
type CalendarServiceConfig struct {
	ProposalTTL    time.Duration
	PlanCacheTTL   time.Duration
	MaxRangeMonths int
}

// CalendarService previews lesson calendars and persists them as versioned plans.
type CalendarService struct {
	lessons    lessonPoolReader
	categories categoryNameReader
	templates  weeklyTemplateReader
	presets    templatePresetReader
	plans      calendarPlanRepository
	cache      planCache
	metrics    allocationRecorder
	tx         txProvider
	validator  *validator.Validate
	logger     *zap.Logger
	store      *proposalStore
	cfg        CalendarServiceConfig
}

// NewCalendarService wires calendar dependencies.
func NewCalendarService(
	lessons lessonPoolReader,
	categories categoryNameReader,
	weeklyTemplates weeklyTemplateReader,
	presets templatePresetReader,
	plans calendarPlanRepository,
	cache planCache,
	metrics allocationRecorder,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg CalendarServiceConfig,
) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.MaxRangeMonths <= 0 {
		cfg.MaxRangeMonths = 24
	}
	return &CalendarService{
		lessons:    lessons,
		categories: categories,
		templates:  weeklyTemplates,
		presets:    presets,
		plans:      plans,
		cache:      cache,
		metrics:    metrics,
		tx:         tx,
		validator:  validate,
		logger:     logger,
		store:      newProposalStore(cfg.ProposalTTL),
		cfg:        cfg,
	}
}

// Generate resolves the template, loads the lesson pool and runs the allocator.
// The result is kept as a proposal until it is saved or expires.
func (s *CalendarService) Generate(ctx context.Context, req dto.GenerateCalendarRequest) (*dto.CalendarPreviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar generation payload")
	}

	rng := req.Range()
	months, err := calendar.ExpandRange(rng)
	if err != nil {
		return nil, engineError(err)
	}
	if len(months) > s.cfg.MaxRangeMonths {
		return nil, appErrors.Clone(appErrors.ErrInvalidRange, fmt.Sprintf("range spans %d months, maximum is %d", len(months), s.cfg.MaxRangeMonths))
	}

	tmpl, ref, err := s.resolveTemplate(ctx, req)
	if err != nil {
		return nil, err
	}

	categoryIDs := dto.CategoryIDStrings(tmpl.CategoryIDs())
	pool, err := s.loadPool(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}
	names := s.categoryNames(ctx, categoryIDs)

	start := time.Now()
	result, err := calendar.Allocate(calendar.Request{Template: tmpl, Lessons: pool, Range: rng})
	elapsed := time.Since(start)
	if s.metrics != nil {
		var stats *calendar.Stats
		if result != nil {
			stats = &result.Stats
		}
		s.metrics.ObserveAllocation(stats, elapsed, err)
	}
	if err != nil {
		return nil, engineError(err)
	}

	s.logger.Info("calendar allocated",
		zap.String("template_ref", ref),
		zap.String("from", rng.Start.String()),
		zap.String("to", rng.End.String()),
		zap.Int("months", len(result.Months)),
		zap.Int("pool_size", len(pool)),
		zap.Int("lessons", result.Stats.Lessons),
		zap.Int("fallbacks", result.Stats.Fallbacks),
		zap.Int("missing", result.Stats.Missing),
		zap.Duration("duration", elapsed),
	)

	proposal := calendarProposal{
		ProposalID:  uuid.NewString(),
		TemplateRef: ref,
		Range:       rng,
		Template:    tmpl.Raw(),
		Grid:        dto.NewCalendarGrid(result.Grid),
		Usage:       result.Usage,
		Stats:       result.Stats,
		Categories:  names,
		PoolSize:    len(pool),
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	return &dto.CalendarPreviewResponse{
		ProposalID:  proposal.ProposalID,
		TemplateRef: ref,
		Range:       dto.NewCalendarRange(rng),
		Grid:        proposal.Grid,
		Usage:       proposal.Usage,
		Stats:       proposal.Stats,
		Categories:  names,
		Template:    proposal.Template,
		ExpiresAt:   proposal.RequestedAt.Add(s.cfg.ProposalTTL),
	}, nil
}

// Save persists a previewed proposal as the next plan version of its template.
func (s *CalendarService) Save(ctx context.Context, req dto.SaveCalendarRequest, actorID string) (*models.CalendarPlanSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save calendar payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	record, encodeErr := proposal.toPlan(req.Name, actorID)
	if encodeErr != nil {
		return nil, appErrors.Wrap(encodeErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode calendar plan")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.plans.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create calendar plan")
		return nil, err
	}

	if req.Publish {
		if err = s.plans.ArchivePublished(ctx, tx, record.TemplateRef, record.ID); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive previous plans")
			return nil, err
		}
		if err = s.plans.UpdateStatus(ctx, tx, record.ID, models.CalendarPlanStatusPublished, nil); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish calendar plan")
			return nil, err
		}
		record.Status = models.CalendarPlanStatusPublished
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit calendar plan")
		return nil, err
	}

	s.store.Delete(req.ProposalID)
	if req.Publish {
		s.invalidatePlans(ctx, "*")
	}

	s.logger.Info("calendar plan saved",
		zap.String("plan_id", record.ID),
		zap.String("template_ref", record.TemplateRef),
		zap.Int("version", record.Version),
		zap.String("status", string(record.Status)),
	)
	summary := planSummary(record)
	return &summary, nil
}

// List returns plan summaries with pagination metadata.
func (s *CalendarService) List(ctx context.Context, query dto.CalendarPlanQuery) ([]models.CalendarPlanSummary, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar plan query")
	}
	filter := models.CalendarPlanFilter{TemplateRef: query.TemplateRef, Page: query.Page, PageSize: query.PageSize}
	if query.Status != "" {
		status := models.CalendarPlanStatus(query.Status)
		filter.Status = &status
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	plans, total, err := s.plans.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list calendar plans")
	}
	if plans == nil {
		plans = []models.CalendarPlanSummary{}
	}
	return plans, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a stored plan with its decoded grid. The second value reports a
// cache hit.
func (s *CalendarService) Get(ctx context.Context, id string) (*dto.CalendarPlanDetail, bool, error) {
	if id == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	key := cache.Key("plan", id)
	if s.cache != nil {
		var cached dto.CalendarPlanDetail
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, false, err
	}
	detail, err := decodePlan(plan)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode calendar plan")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, detail, s.cfg.PlanCacheTTL)
	}
	return detail, false, nil
}

// Publish marks a plan as the published version for its template and
// archives the previously published one.
func (s *CalendarService) Publish(ctx context.Context, id string) (*models.CalendarPlanSummary, error) {
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	switch plan.Status {
	case models.CalendarPlanStatusDraft:
	case models.CalendarPlanStatusPublished:
		return nil, appErrors.Clone(appErrors.ErrConflict, "calendar plan already published")
	default:
		return nil, appErrors.Clone(appErrors.ErrConflict, "only draft calendar plans can be published")
	}
	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.plans.ArchivePublished(ctx, tx, plan.TemplateRef, plan.ID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive previous plans")
		return nil, err
	}
	if err = s.plans.UpdateStatus(ctx, tx, plan.ID, models.CalendarPlanStatusPublished, nil); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish calendar plan")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit calendar plan")
		return nil, err
	}

	s.invalidatePlans(ctx, "*")
	plan.Status = models.CalendarPlanStatusPublished
	summary := planSummary(plan)
	return &summary, nil
}

// Delete removes a draft plan version.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return err
	}
	if plan.Status != models.CalendarPlanStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft calendar plans can be deleted")
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The plan was removed or published after the status check.
			if _, findErr := s.findPlan(ctx, id); findErr != nil {
				return findErr
			}
			return appErrors.Clone(appErrors.ErrConflict, "only draft calendar plans can be deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete calendar plan")
	}
	s.invalidatePlans(ctx, id)
	return nil
}

func (s *CalendarService) findPlan(ctx context.Context, id string) (*models.CalendarPlan, error) {
	plan, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "calendar plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar plan")
	}
	return plan, nil
}

func (s *CalendarService) invalidatePlans(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, cache.Key("plan", id))
}

func (s *CalendarService) resolveTemplate(ctx context.Context, req dto.GenerateCalendarRequest) (calendar.WeeklyTemplate, string, error) {
	sources := 0
	for _, set := range []bool{req.TemplateID != "", req.PresetName != "", len(req.Template) > 0} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return calendar.WeeklyTemplate{}, "", appErrors.Clone(appErrors.ErrValidation, "exactly one of templateId, presetName or template is required")
	}

	switch {
	case req.TemplateID != "":
		if s.templates == nil {
			return calendar.WeeklyTemplate{}, "", appErrors.Clone(appErrors.ErrNotFound, "weekly template not found")
		}
		stored, err := s.templates.FindByID(ctx, req.TemplateID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return calendar.WeeklyTemplate{}, "", appErrors.Clone(appErrors.ErrNotFound, "weekly template not found")
			}
			return calendar.WeeklyTemplate{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly template")
		}
		var raw calendar.RawTemplate
		if err := stored.Slots.Unmarshal(&raw); err != nil {
			return calendar.WeeklyTemplate{}, "", appErrors.Wrap(err, appErrors.ErrInvalidTemplate.Code, appErrors.ErrInvalidTemplate.Status, "stored weekly template is not a day/slot table")
		}
		tmpl, err := calendar.ResolveTemplate(raw)
		if err != nil {
			return calendar.WeeklyTemplate{}, "", engineError(err)
		}
		return tmpl, templateRefStoredPrefix + stored.ID, nil
	case req.PresetName != "":
		if s.presets == nil {
			return calendar.WeeklyTemplate{}, "", appErrors.Clone(appErrors.ErrNotFound, "template preset not found")
		}
		preset, ok := s.presets.Get(req.PresetName)
		if !ok {
			return calendar.WeeklyTemplate{}, "", appErrors.Clone(appErrors.ErrNotFound, "template preset not found")
		}
		return preset.Template, preset.Ref(), nil
	default:
		tmpl, err := calendar.ResolveTemplate(calendar.RawTemplate(req.Template))
		if err != nil {
			return calendar.WeeklyTemplate{}, "", engineError(err)
		}
		return tmpl, templateRefInline, nil
	}
}

func (s *CalendarService) loadPool(ctx context.Context, categoryIDs []string) ([]calendar.LessonUnit, error) {
	if len(categoryIDs) == 0 || s.lessons == nil {
		return nil, nil
	}
	start := time.Now()
	rows, err := s.lessons.ListPool(ctx, categoryIDs)
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("lessons.pool", time.Since(start))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson pool")
	}
	pool := make([]calendar.LessonUnit, 0, len(rows))
	for _, row := range rows {
		pool = append(pool, calendar.LessonUnit{
			ID:         row.ID,
			CategoryID: calendar.CategoryID(row.CategoryID),
			Title:      row.Title,
			Year:       row.Year,
			Month:      row.Month,
			Week:       row.Week,
		})
	}
	return pool, nil
}

// categoryNames is display-only; a lookup failure leaves names empty.
func (s *CalendarService) categoryNames(ctx context.Context, ids []string) map[string]string {
	if s.categories == nil || len(ids) == 0 {
		return map[string]string{}
	}
	names, err := s.categories.NamesByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("category names unavailable", zap.Error(err))
		return map[string]string{}
	}
	return names
}

// engineError maps allocator failures onto API error codes, keeping the
// engine error reachable through errors.As.
func engineError(err error) error {
	switch {
	case errors.Is(err, calendar.ErrInvalidTemplate):
		return appErrors.Wrap(err, appErrors.ErrInvalidTemplate.Code, appErrors.ErrInvalidTemplate.Status, err.Error())
	case errors.Is(err, calendar.ErrInvalidRange):
		return appErrors.Wrap(err, appErrors.ErrInvalidRange.Code, appErrors.ErrInvalidRange.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "calendar allocation failed")
	}
}

func planSummary(plan *models.CalendarPlan) models.CalendarPlanSummary {
	return models.CalendarPlanSummary{
		ID:          plan.ID,
		Name:        plan.Name,
		TemplateRef: plan.TemplateRef,
		Version:     plan.Version,
		Status:      plan.Status,
		StartYear:   plan.StartYear,
		StartMonth:  plan.StartMonth,
		EndYear:     plan.EndYear,
		EndMonth:    plan.EndMonth,
		CreatedBy:   plan.CreatedBy,
		CreatedAt:   plan.CreatedAt,
		UpdatedAt:   plan.UpdatedAt,
	}
}

func decodePlan(plan *models.CalendarPlan) (*dto.CalendarPlanDetail, error) {
	detail := &dto.CalendarPlanDetail{
		CalendarPlanSummary: planSummary(plan),
		Grid:                []dto.CalendarMonth{},
		Usage:               map[string]int{},
		Categories:          map[string]string{},
	}
	if len(plan.Template) > 0 {
		if err := plan.Template.Unmarshal(&detail.Template); err != nil {
			return nil, fmt.Errorf("decode template: %w", err)
		}
	}
	if len(plan.Grid) > 0 {
		if err := plan.Grid.Unmarshal(&detail.Grid); err != nil {
			return nil, fmt.Errorf("decode grid: %w", err)
		}
	}
	if len(plan.Usage) > 0 {
		if err := plan.Usage.Unmarshal(&detail.Usage); err != nil {
			return nil, fmt.Errorf("decode usage: %w", err)
		}
	}
	if len(plan.Meta) > 0 {
		var meta dto.CalendarPlanMeta
		if err := plan.Meta.Unmarshal(&meta); err != nil {
			return nil, fmt.Errorf("decode meta: %w", err)
		}
		detail.Stats = meta.Stats
		if meta.Categories != nil {
			detail.Categories = meta.Categories
		}
	}
	return detail, nil
}

type calendarProposal struct {
	ProposalID  string
	TemplateRef string
	Range       calendar.DateRange
	Template    calendar.RawTemplate
	Grid        []dto.CalendarMonth
	Usage       map[string]int
	Stats       calendar.Stats
	Categories  map[string]string
	PoolSize    int
	RequestedAt time.Time
}

func (p calendarProposal) toPlan(name, actorID string) (*models.CalendarPlan, error) {
	tmpl, err := json.Marshal(p.Template)
	if err != nil {
		return nil, err
	}
	grid, err := json.Marshal(p.Grid)
	if err != nil {
		return nil, err
	}
	usage, err := json.Marshal(p.Usage)
	if err != nil {
		return nil, err
	}
	meta, err := json.Marshal(dto.CalendarPlanMeta{
		Stats:       p.Stats,
		Categories:  p.Categories,
		GeneratedAt: p.RequestedAt,
		PoolSize:    p.PoolSize,
	})
	if err != nil {
		return nil, err
	}
	return &models.CalendarPlan{
		Name:        name,
		TemplateRef: p.TemplateRef,
		Status:      models.CalendarPlanStatusDraft,
		StartYear:   p.Range.Start.Year,
		StartMonth:  p.Range.Start.Month,
		EndYear:     p.Range.End.Year,
		EndMonth:    p.Range.End.Month,
		Template:    types.JSONText(tmpl),
		Grid:        types.JSONText(grid),
		Usage:       types.JSONText(usage),
		Meta:        types.JSONText(meta),
		CreatedBy:   actorID,
	}, nil
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]calendarProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]calendarProposal),
	}
}

func (s *proposalStore) Save(proposal calendarProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (calendarProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return calendarProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return calendarProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// purgeLocked drops expired proposals; callers hold mu.
func (s *proposalStore) purgeLocked() {
	for id, proposal := range s.items {
		if time.Since(proposal.RequestedAt) > s.ttl {
			delete(s.items, id)
		}
	}
}
