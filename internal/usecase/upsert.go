package usecase

import (
	"context"
	"fmt"
	"strings"

	"NewsAnalyzer/internal/domain"
)

// PrepareArticle validates a raw record and coerces it into the stored shape.
// Whatever status the caller supplied, a freshly upserted article is PENDING.
func PrepareArticle(raw domain.RawArticle) (domain.Article, error) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return domain.Article{}, domain.ErrMissingURL
	}

	author := strings.TrimSpace(raw.Author)
	if author == "" {
		author = domain.UnknownAuthor
	}

	return domain.Article{
		URL:         url,
		Title:       strings.TrimSpace(raw.Title),
		Author:      author,
		Category:    domain.NormalizeCategory(raw.Category),
		Content:     raw.Content,
		PublishedAt: raw.PublishedAt,
		Source:      strings.TrimSpace(raw.Source),
		ImageURL:    strings.TrimSpace(raw.ImageURL),
		Status:      domain.StatusPending,
	}, nil
}

// Upsert stores the raw article keyed by URL and returns its id. Repeating the
// call with the same URL updates the existing row instead of adding one.
func (p *Pipeline) Upsert(ctx context.Context, raw domain.RawArticle) (int64, error) {
	article, err := PrepareArticle(raw)
	if err != nil {
		return 0, err
	}

	id, err := p.repository.UpsertArticle(ctx, article)
	if err != nil {
		return 0, fmt.Errorf("upsert article: %w", err)
	}
	return id, nil
}
