package app

import (
	"context"
	"log/slog"
	"time"

	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/formatter"
	"NewsBrief/internal/infrastructure/enrich"
	"NewsBrief/internal/infrastructure/llm"
	"NewsBrief/internal/infrastructure/scheduler"
	"NewsBrief/internal/infrastructure/storage"
	"NewsBrief/internal/infrastructure/telegram"
	"NewsBrief/internal/logging"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	region    domain.Region
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	logger    *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	region, ok := domain.ParseRegion(cfg.Bulletin.Region)
	if !ok {
		baseLogger.Warn("unknown region in config, using default",
			"region", cfg.Bulletin.Region, "default", domain.RegionUSA)
		region = domain.RegionUSA
	}

	var provider ports.NewsProvider
	if cfg.Perplexity.APIKey != "" {
		provider = llm.NewPerplexityClient(cfg.Perplexity, baseLogger.With("component", "perplexity"))
	}

	var repository ports.BulletinRepository
	if cfg.Database.DSN != "" {
		if db, err := storage.Open(cfg.Database.DSN); err != nil {
			baseLogger.Warn("postgres unavailable, bulletins will not be persisted", "error", err)
		} else {
			repository = storage.NewPostgresRepository(db)
		}
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Provider:      provider,
		Enricher:      enrich.NewPageEnricher(nil, baseLogger.With("component", "enricher")),
		Repository:    repository,
		Notifier:      notifier,
		Formatter:     formatter.New(cfg.Perplexity.Model, cfg.Bulletin.Version),
		Region:        region,
		WorkflowRunID: cfg.Bulletin.WorkflowRunID,
		Logger:        baseLogger.With("component", "pipeline"),
	})

	driver := scheduler.NewPeriodScheduler(
		cfg.Scheduler.Location(),
		cfg.Scheduler.MorningTime,
		cfg.Scheduler.EveningTime,
	)

	return &Application{
		cfg:       cfg,
		region:    region,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline),
		logger:    baseLogger,
	}
}

// Run performs a single pipeline execution for the current period window.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	period := domain.PeriodMorning
	if now.Hour() >= 12 {
		period = domain.PeriodEvening
	}

	return a.pipeline.ProcessPeriod(ctx, period, now.Format(time.DateOnly))
}

// Start launches the recurring morning/evening schedule.
func (a *Application) Start(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Start(ctx)
}

// Stop tears down the schedule.
func (a *Application) Stop(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Stop(ctx)
}
