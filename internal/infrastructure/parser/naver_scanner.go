package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/scanner"
)

const (
	naverSectionBaseURL = "https://news.naver.com/section/"
	userAgent           = "Mozilla/5.0 (compatible; NewsAnalyzer/1.0)"
)

// NaverScanner reads Naver News section list pages and returns the linked articles.
type NaverScanner struct {
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Scanner = (*NaverScanner)(nil)

// NewNaverScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewNaverScanner(client *http.Client, logger *slog.Logger) *NaverScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &NaverScanner{client: client, logger: logger}
}

// Name identifies the strategy inside the registry.
func (n *NaverScanner) Name() string {
	return "naver"
}

// Scan walks each configured section. The category name is the section code
// (100..105) and becomes the section hint of every ref found on that page.
// A section that cannot be loaded is skipped; its error is joined into the
// returned error next to the refs of the other sections.
func (n *NaverScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.ArticleRef, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no sections provided for site %s", req.SiteName)
	}

	var (
		results = make([]domain.ArticleRef, 0)
		seen    = map[string]struct{}{}
		errs    []error
	)

	for _, cat := range req.Categories {
		pageURL := sectionURL(cat)

		doc, err := fetchDocument(ctx, n.client, pageURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("section %s: %w", cat.Name, err))
			continue
		}

		refs := extractSectionItems(doc, pageURL, cat.Name)
		if req.Limit > 0 && len(refs) > req.Limit {
			refs = refs[:req.Limit]
		}
		for _, ref := range refs {
			if _, ok := seen[ref.URL]; ok {
				continue
			}
			seen[ref.URL] = struct{}{}
			results = append(results, ref)
		}

		if n.logger != nil {
			n.logger.Debug("section scanned", "site", req.SiteName, "section", cat.Name, "refs", len(refs))
		}
	}

	return results, errors.Join(errs...)
}

func sectionURL(cat scanner.Category) string {
	if cat.URL != "" {
		return cat.URL
	}
	return naverSectionBaseURL + strings.TrimSpace(cat.Name)
}

func extractSectionItems(doc *goquery.Document, pageURL, section string) []domain.ArticleRef {
	base, _ := url.Parse(pageURL)

	var refs []domain.ArticleRef
	doc.Find(".sa_item_inner").Each(func(_ int, item *goquery.Selection) {
		titleEl := item.Find(".sa_text_title").First()
		href, ok := titleEl.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		thumbnail, _ := item.Find("img").First().Attr("src")

		refs = append(refs, domain.ArticleRef{
			URL:       resolveURL(base, href),
			Title:     strings.TrimSpace(titleEl.Text()),
			Section:   section,
			Thumbnail: strings.TrimSpace(thumbnail),
		})
	})
	return refs
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}
