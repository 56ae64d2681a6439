package usecase

import (
	"context"
	"errors"
	"log/slog"

	"NewsAnalyzer/internal/ports"
)

// ScheduleSpec holds the cron spec of each recurring step. Empty disables a step.
type ScheduleSpec struct {
	Ingest  string
	Analyze string
	Trend   string
}

// Scheduler wires the cron-like driver with the pipeline use cases.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	specs    ScheduleSpec
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, specs ScheduleSpec, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, specs: specs, logger: logger}
}

// Start registers the ingest, analyze and trend steps and starts the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context) error
	}{
		{name: "ingest", spec: s.specs.Ingest, run: func(ctx context.Context) error {
			_, err := s.pipeline.Ingest(ctx)
			return err
		}},
		{name: "analyze", spec: s.specs.Analyze, run: func(ctx context.Context) error {
			_, err := s.pipeline.Analyze(ctx, 0)
			return err
		}},
		{name: "trend", spec: s.specs.Trend, run: func(ctx context.Context) error {
			_, err := s.pipeline.ScoreTrends(ctx)
			return err
		}},
	}

	var errs []error
	for _, job := range jobs {
		run := job.run
		name := job.name
		err := s.driver.Schedule(name, job.spec, func(ctx context.Context) {
			if err := run(ctx); err != nil {
				s.logger.Error("scheduled job failed", "job", name, "error", err)
			}
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	return s.driver.Start(ctx)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
