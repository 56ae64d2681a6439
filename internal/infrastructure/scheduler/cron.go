package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"NewsAnalyzer/internal/ports"
)

// CronScheduler runs named jobs on cron specs. A job still running when its
// next tick arrives is skipped.
type CronScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	started bool
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler evaluating specs in loc.
func NewCronScheduler(loc *time.Location, logger *slog.Logger) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	adapter := cronLogger{logger: logger}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Schedule registers job under spec. An empty spec leaves the job disabled.
func (c *CronScheduler) Schedule(name, spec string, job func(ctx context.Context)) error {
	if spec == "" {
		c.logger.Info("job disabled", "job", name)
		return nil
	}

	_, err := c.cron.AddFunc(spec, func() {
		started := time.Now()
		c.logger.Debug("job started", "job", name)
		job(c.jobContext())
		c.logger.Debug("job finished", "job", name, "elapsed", time.Since(started))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	c.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

// Start begins firing jobs; they receive ctx.
func (c *CronScheduler) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return nil
	}
	c.ctx = ctx
	c.started = true
	c.cron.Start()
	return nil
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	c.mu.Unlock()

	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}

// Jobs reports how many jobs are registered.
func (c *CronScheduler) Jobs() int {
	return len(c.cron.Entries())
}

func (c *CronScheduler) jobContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
