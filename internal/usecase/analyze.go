package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsAnalyzer/internal/analysis"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/metrics"
)

const (
	outcomeAnalyzed = "analyzed"
	outcomeRejected = "rejected"
	outcomeDegraded = "degraded"
	outcomeError    = "error"
)

// AnalyzeReport summarizes one analyze run.
type AnalyzeReport struct {
	RunID      string `json:"runId"`
	Candidates int    `json:"candidates"`
	Analyzed   int    `json:"analyzed"`
	Rejected   int    `json:"rejected"`
	Degraded   int    `json:"degraded"`
	Errors     int    `json:"errors"`
}

func (r *AnalyzeReport) add(outcome string, degraded bool) {
	switch outcome {
	case outcomeAnalyzed:
		r.Analyzed++
	case outcomeRejected:
		r.Rejected++
	case outcomeError:
		r.Errors++
	}
	if degraded {
		r.Degraded++
	}
}

// Analyze runs up to limit unanalyzed articles through the analyzer. A limit
// of zero or less uses the configured batch size. Every candidate is handled
// on its own: analyzer failures, timeouts and per-article store errors are
// counted and leave the article for the next run. Only a failed candidate
// query is returned as an error.
func (p *Pipeline) Analyze(ctx context.Context, limit int) (AnalyzeReport, error) {
	started := time.Now()
	defer metrics.ObserveStep("analyze", started)

	runID, log := p.runLogger("analyze")
	report := AnalyzeReport{RunID: runID}

	if limit <= 0 {
		limit = p.batchSize
	}

	candidates, err := p.repository.ListAnalysisCandidates(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("list candidates: %w", err)
	}
	report.Candidates = len(candidates)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(p.concurrency)

	for _, article := range candidates {
		article := article
		g.Go(func() error {
			outcome, degraded, err := p.analyzeOne(ctx, log, article)
			if err != nil {
				metrics.RecordError("store")
				log.Error("store analysis outcome", "article_id", article.ID, "error", err)
			}
			mu.Lock()
			report.add(outcome, degraded)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	log.Info("analyze finished",
		"candidates", report.Candidates,
		"analyzed", report.Analyzed,
		"rejected", report.Rejected,
		"degraded", report.Degraded,
		"errors", report.Errors,
		"elapsed", time.Since(started),
	)
	return report, nil
}

// analyzeOne returns the outcome label and whether the payload was degraded.
// Only store failures are returned as errors; the outcome is then outcomeError.
func (p *Pipeline) analyzeOne(ctx context.Context, log *slog.Logger, article domain.Article) (string, bool, error) {
	log = log.With("article_id", article.ID)

	raw, err := p.callAnalyzer(ctx, article.Title, article.Content)
	if err != nil {
		metrics.RecordAnalysis(outcomeError)
		metrics.RecordError("analyze")
		log.Warn("analyzer call failed", "error", err, "timeout", errors.Is(err, context.DeadlineExceeded))
		return outcomeError, false, nil
	}

	outcome := analysis.Parse(raw)
	if outcome.Degraded {
		metrics.RecordAnalysis(outcomeDegraded)
		log.Warn("analyzer payload is not json", "error", outcome.Cause, "payload", outcome.Payload)
	}

	result, err := analysis.Validate(outcome.Fields)
	if err != nil {
		if err := p.repository.UpdateStatus(ctx, article.ID, domain.StatusFailed); err != nil {
			return outcomeError, outcome.Degraded, fmt.Errorf("mark article %d failed: %w", article.ID, err)
		}
		metrics.RecordAnalysis(outcomeRejected)
		log.Info("analysis rejected", "reason", err)
		return outcomeRejected, outcome.Degraded, nil
	}

	resultID, err := p.repository.SaveAnalysis(ctx, article.ID, result)
	if err != nil {
		return outcomeError, outcome.Degraded, fmt.Errorf("save analysis: %w", err)
	}

	metrics.RecordAnalysis(outcomeAnalyzed)
	log.Debug("analysis stored", "result_id", resultID, "sentiment", result.Sentiment, "keywords", len(result.Keywords))
	return outcomeAnalyzed, outcome.Degraded, nil
}

// AnalyzeText analyzes ad-hoc text without touching the store. Rejections wrap
// analysis.ErrRejected.
func (p *Pipeline) AnalyzeText(ctx context.Context, title, content string) (domain.Analysis, error) {
	raw, err := p.callAnalyzer(ctx, title, content)
	if err != nil {
		return domain.Analysis{}, err
	}

	outcome := analysis.Parse(raw)
	if outcome.Degraded {
		p.logger.Warn("analyzer payload is not json", "error", outcome.Cause)
	}
	return analysis.Validate(outcome.Fields)
}

func (p *Pipeline) callAnalyzer(ctx context.Context, title, content string) (string, error) {
	if p.analyzer == nil {
		return "", errors.New("analyzer is not configured")
	}

	llmCtx, cancel := p.withTimeout(ctx, p.llmTimeout)
	defer cancel()

	raw, err := p.analyzer.Analyze(llmCtx, title, content)
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	return raw, nil
}
