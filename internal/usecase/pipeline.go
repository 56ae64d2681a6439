package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsAnalyzer/internal/ports"
	"NewsAnalyzer/internal/trend"
)

const (
	defaultBatchSize    = 5
	defaultLLMTimeout   = 60 * time.Second
	defaultFetchTimeout = 20 * time.Second
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source       ports.ArticleSource
	Fetcher      ports.DetailFetcher
	Repository   ports.ArticleRepository
	Analyzer     ports.Analyzer
	Logger       *slog.Logger
	Now          func() time.Time
	BatchSize    int
	Concurrency  int
	FetchTimeout time.Duration
	LLMTimeout   time.Duration
	TrendParams  trend.Params
}

// Pipeline drives articles from discovery through analysis to trend scoring.
// Each step is an independent batch that can be retried on the next run.
type Pipeline struct {
	source       ports.ArticleSource
	fetcher      ports.DetailFetcher
	repository   ports.ArticleRepository
	analyzer     ports.Analyzer
	logger       *slog.Logger
	now          func() time.Time
	batchSize    int
	concurrency  int
	fetchTimeout time.Duration
	llmTimeout   time.Duration
	trendParams  trend.Params

	trendMu sync.Mutex
}

// NewPipeline constructs the orchestration component, filling unset tunables with defaults.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		source:       deps.Source,
		fetcher:      deps.Fetcher,
		repository:   deps.Repository,
		analyzer:     deps.Analyzer,
		logger:       deps.Logger,
		now:          deps.Now,
		batchSize:    deps.BatchSize,
		concurrency:  deps.Concurrency,
		fetchTimeout: deps.FetchTimeout,
		llmTimeout:   deps.LLMTimeout,
		trendParams:  deps.TrendParams,
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.batchSize <= 0 {
		p.batchSize = defaultBatchSize
	}
	if p.concurrency <= 0 {
		p.concurrency = 1
	}
	if p.fetchTimeout <= 0 {
		p.fetchTimeout = defaultFetchTimeout
	}
	if p.llmTimeout <= 0 {
		p.llmTimeout = defaultLLMTimeout
	}
	defaults := trend.DefaultParams()
	if p.trendParams.HalfLife <= 0 {
		p.trendParams.HalfLife = defaults.HalfLife
	}
	if p.trendParams.Window <= 0 {
		p.trendParams.Window = defaults.Window
	}

	return p
}

// runLogger tags every record of one step execution with a fresh run id.
func (p *Pipeline) runLogger(step string) (string, *slog.Logger) {
	runID := uuid.NewString()
	return runID, p.logger.With("step", step, "run_id", runID)
}

func (p *Pipeline) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
