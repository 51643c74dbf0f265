package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/yardimli/learn-with-ai-sub000/api/swagger"
	"github.com/yardimli/learn-with-ai-sub000/internal/handler"
	internalmiddleware "github.com/yardimli/learn-with-ai-sub000/internal/middleware"
	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	"github.com/yardimli/learn-with-ai-sub000/internal/repository"
	"github.com/yardimli/learn-with-ai-sub000/internal/service"
	"github.com/yardimli/learn-with-ai-sub000/internal/templates"
	"github.com/yardimli/learn-with-ai-sub000/pkg/cache"
	"github.com/yardimli/learn-with-ai-sub000/pkg/config"
	"github.com/yardimli/learn-with-ai-sub000/pkg/database"
	"github.com/yardimli/learn-with-ai-sub000/pkg/export"
	"github.com/yardimli/learn-with-ai-sub000/pkg/jobs"
	"github.com/yardimli/learn-with-ai-sub000/pkg/logger"
	corsmiddleware "github.com/yardimli/learn-with-ai-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/yardimli/learn-with-ai-sub000/pkg/middleware/requestid"
	"github.com/yardimli/learn-with-ai-sub000/pkg/storage"
)

// @title Lesson Calendar API
// @version 1.0.0
// @description Generates monthly lesson calendars from weekly templates and a lesson pool.
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, plan cache disabled", "error", err)
		} else {
			defer client.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.PlanCacheTTL, logr, cfg.Cache.Enabled)

	presets := templates.NewLoader(logr)
	if err := presets.LoadFromDir(cfg.Calendar.TemplatesDir); err != nil {
		logr.Sugar().Warnw("failed to load template presets", "dir", cfg.Calendar.TemplatesDir, "error", err)
	}

	validate := validator.New()

	lessonRepo := repository.NewLessonRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	weeklyTemplateRepo := repository.NewWeeklyTemplateRepository(db)
	planRepo := repository.NewCalendarPlanRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	calendarSvc := service.NewCalendarService(
		lessonRepo,
		categoryRepo,
		weeklyTemplateRepo,
		presets,
		planRepo,
		cacheSvc,
		metricsSvc,
		db,
		validate,
		logr,
		service.CalendarServiceConfig{
			ProposalTTL:    cfg.Calendar.ProposalTTL,
			PlanCacheTTL:   cfg.Calendar.PlanCacheTTL,
			MaxRangeMonths: cfg.Calendar.MaxRangeMonths,
		},
	)
	weeklyTemplateSvc := service.NewWeeklyTemplateService(weeklyTemplateRepo, presets, validate, logr)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		exportHandler, err = buildExports(ctx, cfg, logr, exportJobRepo, calendarSvc)
		if err != nil {
			logr.Sugar().Fatalw("failed to init exports", "error", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, func(ctx context.Context) error {
		return database.Ready(ctx, db, 2*time.Second)
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.GET("/system/metrics", internalmiddleware.CalendarManagers(), metricsHandler.System)

	calendarGate := internalmiddleware.FeatureGate("calendar", cfg.Calendar.Enabled)
	exportsGate := internalmiddleware.FeatureGate("exports", cfg.Exports.Enabled)
	viewers := internalmiddleware.CalendarViewers()
	managers := internalmiddleware.CalendarManagers()

	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	templateHandler := handler.NewWeeklyTemplateHandler(weeklyTemplateSvc)

	calendars := secured.Group("/calendars")
	calendars.Use(calendarGate)
	{
		calendars.POST("/generate", viewers, calendarHandler.Generate)

		calendars.GET("/plans", viewers, calendarHandler.List)
		calendars.GET("/plans/:id", viewers, calendarHandler.Get)
		calendars.POST("/plans", managers, internalmiddleware.Audit(logr, models.AuditActionPlanSave, models.AuditResourceCalendarPlan), calendarHandler.Save)
		calendars.POST("/plans/:id/publish", managers, internalmiddleware.Audit(logr, models.AuditActionPlanPublish, models.AuditResourceCalendarPlan), calendarHandler.Publish)
		calendars.DELETE("/plans/:id", managers, internalmiddleware.Audit(logr, models.AuditActionPlanDelete, models.AuditResourceCalendarPlan), calendarHandler.Delete)

		calendars.GET("/templates", viewers, templateHandler.List)
		calendars.GET("/templates/presets", viewers, templateHandler.Presets)
		calendars.GET("/templates/:id", viewers, templateHandler.Get)
		calendars.POST("/templates", managers, internalmiddleware.Audit(logr, models.AuditActionTemplateCreate, models.AuditResourceWeeklyTemplate), templateHandler.Create)
		calendars.PUT("/templates/:id", managers, internalmiddleware.Audit(logr, models.AuditActionTemplateUpdate, models.AuditResourceWeeklyTemplate), templateHandler.Update)
		calendars.DELETE("/templates/:id", managers, internalmiddleware.Audit(logr, models.AuditActionTemplateDelete, models.AuditResourceWeeklyTemplate), templateHandler.Delete)

		if exportHandler != nil {
			calendars.POST("/plans/:id/exports", exportsGate, viewers, internalmiddleware.Audit(logr, models.AuditActionPlanExport, models.AuditResourceCalendarPlan), exportHandler.Create)
			calendars.GET("/exports/:id", exportsGate, viewers, exportHandler.Status)
		} else {
			calendars.POST("/plans/:id/exports", exportsGate)
			calendars.GET("/exports/:id", exportsGate)
		}
	}

	// Download links carry their own signature, so they sit outside the JWT group.
	if exportHandler != nil {
		api.GET("/export/:token", exportsGate, exportHandler.Download)
	} else {
		api.GET("/export/:token", exportsGate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

func buildExports(ctx context.Context, cfg *config.Config, logr *zap.Logger, repo *repository.ExportJobRepository, plans *service.CalendarService) (*handler.ExportHandler, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	exporter := service.NewExportService(
		plans,
		store,
		signer,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		logr,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)
	worker := service.NewExportWorker(repo, exporter, cfg.Exports.WorkerRetries, logr)

	var exportSvc *service.CalendarExportService
	queue := jobs.NewQueue(service.ExportJobType, worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		OnExhausted: func(ctx context.Context, job jobs.Job, cause error) {
			exportSvc.MarkExhausted(ctx, job, cause)
		},
		Logger: logr,
	})
	exportSvc = service.NewCalendarExportService(repo, plans, queue, exporter, logr, service.CalendarExportConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})

	queue.Start(ctx)
	exportSvc.RecoverPendingJobs(ctx)
	exportSvc.StartCleanup(ctx)
	go func() {
		<-ctx.Done()
		queue.Stop()
	}()

	return handler.NewExportHandler(exportSvc), nil
}
