package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"EssayRC/internal/config"
	"EssayRC/internal/infrastructure/fetch"
	"EssayRC/internal/infrastructure/httpapi"
	"EssayRC/internal/infrastructure/llm"
	"EssayRC/internal/infrastructure/scheduler"
	"EssayRC/internal/infrastructure/scrape"
	"EssayRC/internal/infrastructure/storage"
	"EssayRC/internal/logging"
	"EssayRC/internal/rcgen"
	"EssayRC/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	server    *httpapi.Server
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	essays := storage.NewEssayRepository(db)
	rcs := storage.NewRCRepository(db)

	crawler := scrape.NewLinkCrawler(
		fetch.New(cfg.Source.PageDelay(), cfg.Source.UserAgent),
		cfg.Source.BaseURL,
		cfg.Source.ListingPath,
		logging.Component(baseLogger, "crawler"),
	)
	scraper := scrape.NewEssayScraper(
		fetch.New(cfg.Source.ScrapeDelay(), cfg.Source.UserAgent),
		logging.Component(baseLogger, "scraper"),
	)
	ingestor := usecase.NewIngestor(crawler, scraper, essays, logging.Component(baseLogger, "ingest"))

	gemini := llm.NewGeminiClient(cfg.Gemini, rcgen.SchemaHint)
	generator := usecase.NewGenerator(essays, rcs, gemini, usecase.GeneratorConfig{
		MaxWordsPerChunk: cfg.Generation.MaxWordsPerChunk,
		CallDelay:        cfg.Generation.CallDelay(),
		Model:            cfg.Gemini.Model,
	}, logging.Component(baseLogger, "generator"))

	server := httpapi.NewServer(essays, rcs, ingestor, generator, cfg.Source.MaxPages, logging.Component(baseLogger, "http"))

	var sched *usecase.Scheduler
	if cfg.Generation.ScheduleEnabled {
		batch := usecase.NewBatchRunner(generator, logging.Component(baseLogger, "batch"))
		driver := scheduler.NewIntervalScheduler(cfg.Generation.ScheduleEvery())
		sched = usecase.NewScheduler(driver, batch, cfg.Generation.BatchSize)
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		server:    server,
		scheduler: sched,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer a.scheduler.Stop(context.Background())
	}

	srv := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: a.server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return a.db.Close()
}
