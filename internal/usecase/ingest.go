package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/metrics"
)

// IngestReport summarizes one ingest run.
type IngestReport struct {
	RunID       string `json:"runId"`
	Discovered  int    `json:"discovered"`
	Ingested    int    `json:"ingested"`
	Failed      int    `json:"failed"`
	FetchErrors int    `json:"fetchErrors"`
	StoreErrors int    `json:"storeErrors"`
	Skipped     int    `json:"skipped"`
}

// Ingest lists fresh links, fetches every article page and stores the result.
// Articles whose page yields content become INGESTED, the rest FAILED. A failed
// fetch or store write for one article is counted and the run moves on to the
// next link; the article is picked up again by a later run.
func (p *Pipeline) Ingest(ctx context.Context) (IngestReport, error) {
	started := time.Now()
	defer metrics.ObserveStep("ingest", started)

	runID, log := p.runLogger("ingest")
	report := IngestReport{RunID: runID}

	if p.source == nil || p.fetcher == nil {
		return report, fmt.Errorf("ingest: source or fetcher is not configured")
	}

	refs, err := p.source.Collect(ctx)
	if err != nil {
		if len(refs) == 0 {
			return report, fmt.Errorf("collect article links: %w", err)
		}
		log.Warn("some sites failed", "error", err)
	}
	report.Discovered = len(refs)

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		fetchCtx, cancel := p.withTimeout(ctx, p.fetchTimeout)
		raw, err := p.fetcher.Fetch(fetchCtx, ref.URL, ref.Section)
		cancel()
		if err != nil {
			report.FetchErrors++
			metrics.RecordError("fetch")
			log.Warn("fetch article", "url", ref.URL, "error", err)
			continue
		}
		fillFromRef(&raw, ref)

		id, err := p.Upsert(ctx, raw)
		if errors.Is(err, domain.ErrMissingURL) {
			report.Skipped++
			log.Warn("skip article without url", "title", raw.Title)
			continue
		}
		if err != nil {
			report.StoreErrors++
			metrics.RecordError("store")
			log.Error("store article", "url", raw.URL, "error", err)
			continue
		}

		status := domain.FetchedStatus(raw.Content)
		if err := p.repository.UpdateStatus(ctx, id, status); err != nil {
			report.StoreErrors++
			metrics.RecordError("store")
			log.Error("set article status", "article_id", id, "status", status, "error", err)
			continue
		}

		metrics.RecordUpsert(string(status))
		if status == domain.StatusIngested {
			report.Ingested++
		} else {
			report.Failed++
		}
		log.Debug("article stored", "article_id", id, "status", status, "url", raw.URL)
	}

	log.Info("ingest finished",
		"discovered", report.Discovered,
		"ingested", report.Ingested,
		"failed", report.Failed,
		"fetch_errors", report.FetchErrors,
		"store_errors", report.StoreErrors,
		"elapsed", time.Since(started),
	)
	return report, nil
}

// fillFromRef completes fields the detail page did not provide with what the
// listing already showed.
func fillFromRef(raw *domain.RawArticle, ref domain.ArticleRef) {
	if raw.URL == "" {
		raw.URL = ref.URL
	}
	if raw.Title == "" {
		raw.Title = ref.Title
	}
	if raw.ImageURL == "" {
		raw.ImageURL = ref.Thumbnail
	}
	if raw.Category == "" {
		raw.Category = domain.SectionCategory(ref.Section)
	}
}
