package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/scanner"
)

// RSSScanner lists articles from RSS or Atom feeds. Each category URL is a feed.
type RSSScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*RSSScanner)(nil)

func NewRSSScanner(client *http.Client, logger *slog.Logger) *RSSScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSScanner{client: client, logger: logger}
}

func (r *RSSScanner) Name() string {
	return "rss"
}

func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleRef, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	fp := gofeed.NewParser()
	fp.Client = r.client
	fp.UserAgent = userAgent

	var (
		results = make([]domain.ArticleRef, 0)
		seen    = map[string]struct{}{}
		errs    []error
	)

	for _, cat := range req.Categories {
		feed, err := fp.ParseURLWithContext(cat.URL, ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", cat.Name, err))
			continue
		}

		count := 0
		for _, item := range feed.Items {
			if req.Limit > 0 && count >= req.Limit {
				break
			}
			link := strings.TrimSpace(item.Link)
			if link == "" {
				continue
			}
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}

			ref := domain.ArticleRef{
				URL:     link,
				Title:   strings.TrimSpace(item.Title),
				Section: cat.Name,
			}
			if item.Image != nil {
				ref.Thumbnail = item.Image.URL
			}
			results = append(results, ref)
			count++
		}

		if r.logger != nil {
			r.logger.Debug("feed scanned", "site", req.SiteName, "feed", cat.Name, "refs", count)
		}
	}

	return results, errors.Join(errs...)
}
