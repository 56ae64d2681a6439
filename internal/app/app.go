package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/infrastructure/httpapi"
	"NewsAnalyzer/internal/infrastructure/llm"
	"NewsAnalyzer/internal/infrastructure/ml"
	"NewsAnalyzer/internal/infrastructure/parser"
	"NewsAnalyzer/internal/infrastructure/scheduler"
	"NewsAnalyzer/internal/infrastructure/storage"
	"NewsAnalyzer/internal/logging"
	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/scanner"
	"NewsAnalyzer/internal/trend"
	"NewsAnalyzer/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	pipeline *usecase.Pipeline
}

// New builds the adapters and the pipeline. Without a DSN articles live in memory.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	var repo ports.ArticleRepository
	if cfg.Database.DSN != "" {
		pool, err := storage.NewPool(ctx, cfg.Database.DSN, cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.pool = pool
		repo = storage.NewPostgresRepository(pool)
	} else {
		baseLogger.Warn("no database dsn configured, using in-memory store")
		repo = storage.NewMemoryRepository()
	}

	httpClient := &http.Client{Timeout: cfg.Pipeline.FetchTimeout}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewNaverScanner(httpClient, baseLogger.With("component", "scanner.naver")))
	registry.Register(parser.NewRSSScanner(httpClient, baseLogger.With("component", "scanner.rss")))

	source := parser.NewStrategySource(registry, cfg.Sites, baseLogger.With("component", "source"))
	fetcher := parser.NewDetailFetcher(httpClient, baseLogger.With("component", "fetcher"))

	analyzer, err := newAnalyzer(ctx, cfg, baseLogger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:       source,
		Fetcher:      fetcher,
		Repository:   repo,
		Analyzer:     analyzer,
		Logger:       baseLogger.With("component", "pipeline"),
		BatchSize:    cfg.Pipeline.BatchSize,
		Concurrency:  cfg.Pipeline.Concurrency,
		FetchTimeout: cfg.Pipeline.FetchTimeout,
		LLMTimeout:   cfg.LLM.Timeout,
		TrendParams:  trend.Params{HalfLife: cfg.Trend.HalfLife(), Window: cfg.Trend.Window()},
	})
	return a, nil
}

// newAnalyzer prefers the chat API, then the self-hosted service.
func newAnalyzer(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.Analyzer, error) {
	switch {
	case cfg.LLM.APIKey != "":
		analyzer, err := llm.NewChatAnalyzer(ctx, cfg.LLM, logger.With("component", "llm"))
		if err != nil {
			return nil, fmt.Errorf("build chat analyzer: %w", err)
		}
		logger.Info("analyzer backend selected", "backend", "chat", "model", cfg.LLM.Model)
		return analyzer, nil
	case cfg.ML.InferenceURL != "":
		logger.Info("analyzer backend selected", "backend", "ml", "endpoint", cfg.ML.InferenceURL)
		return ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey), nil
	default:
		logger.Warn("no analyzer configured, analysis is disabled")
		return llm.Disabled{}, nil
	}
}

// Pipeline exposes the use cases for one-shot commands.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Serve runs the cron jobs and the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.Location(), a.logger.With("component", "scheduler"))
	jobs := usecase.NewScheduler(driver, a.pipeline, usecase.ScheduleSpec{
		Ingest:  a.cfg.Scheduler.IngestCron,
		Analyze: a.cfg.Scheduler.AnalyzeCron,
		Trend:   a.cfg.Scheduler.TrendCron,
	}, a.logger.With("component", "jobs"))
	server := httpapi.NewServer(a.cfg.HTTP.Addr, a.pipeline, a.logger.With("component", "http"))

	if err := jobs.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := jobs.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler did not stop cleanly", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the database pool.
func (a *Application) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
