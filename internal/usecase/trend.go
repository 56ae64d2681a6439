package usecase

import (
	"context"
	"fmt"
	"time"

	"NewsAnalyzer/internal/metrics"
	"NewsAnalyzer/internal/trend"
)

// TrendReport summarizes one trend pass.
type TrendReport struct {
	RunID  string `json:"runId"`
	Scored int    `json:"scored"`
}

// ScoreTrends recomputes the trend score of every analyzed article from one
// snapshot and writes all scores back together. Concurrent calls run one at a time.
func (p *Pipeline) ScoreTrends(ctx context.Context) (TrendReport, error) {
	p.trendMu.Lock()
	defer p.trendMu.Unlock()

	started := time.Now()
	defer metrics.ObserveStep("trend", started)

	runID, log := p.runLogger("trend")
	report := TrendReport{RunID: runID}

	inputs, err := p.repository.ListTrendInputs(ctx)
	if err != nil {
		return report, fmt.Errorf("load trend inputs: %w", err)
	}

	scores := trend.Compute(p.now(), inputs, p.trendParams)
	if err := p.repository.UpdateTrendScores(ctx, scores); err != nil {
		return report, fmt.Errorf("store trend scores: %w", err)
	}

	report.Scored = len(scores)
	metrics.SetTrendScored(report.Scored)
	log.Info("trend pass finished", "scored", report.Scored, "elapsed", time.Since(started))
	return report, nil
}
