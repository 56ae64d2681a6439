package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

const (
	publishedLayout = "2006-01-02 15:04:05"
	maxPageBytes    = 10 << 20
)

var bylineSelectors = []string{".media_end_head_journalist_name", ".byline", ".reporter"}

// DetailFetcher downloads an article page and extracts its fields with the
// Naver article selectors, falling back to readability for unknown layouts.
type DetailFetcher struct {
	client   *http.Client
	logger   *slog.Logger
	location *time.Location
}

var _ ports.DetailFetcher = (*DetailFetcher)(nil)

// NewDetailFetcher builds a fetcher. Page timestamps are read in KST.
func NewDetailFetcher(client *http.Client, logger *slog.Logger) *DetailFetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &DetailFetcher{
		client:   client,
		logger:   logger,
		location: time.FixedZone("KST", 9*60*60),
	}
}

// Fetch returns the raw article found at rawURL. Missing optional fields stay empty.
func (f *DetailFetcher) Fetch(ctx context.Context, rawURL, sectionHint string) (domain.RawArticle, error) {
	body, err := f.download(ctx, rawURL)
	if err != nil {
		return domain.RawArticle{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.RawArticle{}, fmt.Errorf("parse document: %w", err)
	}

	article := extractDetail(doc, f.location)
	article.URL = rawURL
	article.Category = domain.SectionCategory(sectionHint)

	if article.Content == "" || article.Title == "" {
		f.applyReadability(body, rawURL, &article)
	}

	return article, nil
}

func (f *DetailFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return body, nil
}

func (f *DetailFetcher) applyReadability(body []byte, rawURL string, article *domain.RawArticle) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return
	}

	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		if f.logger != nil {
			f.logger.Debug("readability fallback failed", "url", rawURL, "error", err)
		}
		return
	}

	if article.Content == "" {
		article.Content = strings.TrimSpace(parsed.TextContent)
	}
	if article.Title == "" {
		article.Title = strings.TrimSpace(parsed.Title)
	}
	if article.Author == "" {
		article.Author = strings.TrimSpace(parsed.Byline)
	}
	if article.Source == "" {
		article.Source = strings.TrimSpace(parsed.SiteName)
	}
	if article.ImageURL == "" {
		article.ImageURL = strings.TrimSpace(parsed.Image)
	}
}

func extractDetail(doc *goquery.Document, loc *time.Location) domain.RawArticle {
	var article domain.RawArticle

	article.Title = strings.TrimSpace(doc.Find("h2.media_end_head_headline").First().Text())
	article.Content = joinedText(doc.Find("article#dic_area").First())

	stamp, _ := doc.Find("span.media_end_head_info_datestamp_time._ARTICLE_DATE_TIME").First().Attr("data-date-time")
	if stamp = strings.TrimSpace(stamp); stamp != "" {
		if published, err := time.ParseInLocation(publishedLayout, stamp, loc); err == nil {
			article.PublishedAt = &published
		}
	}

	for _, sel := range bylineSelectors {
		if author := strings.TrimSpace(doc.Find(sel).First().Text()); author != "" {
			article.Author = author
			break
		}
	}

	if alt, ok := doc.Find(".media_end_head_top_logo img").First().Attr("alt"); ok {
		article.Source = strings.TrimSpace(alt)
	}

	if src, ok := doc.Find("article#dic_area img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		article.ImageURL = strings.TrimSpace(src)
	} else if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		article.ImageURL = strings.TrimSpace(og)
	}

	return article
}

// joinedText collects every non-blank text node under sel, one per line.
func joinedText(sel *goquery.Selection) string {
	var parts []string
	var walk func(*goquery.Selection)
	walk = func(s *goquery.Selection) {
		s.Contents().Each(func(_ int, child *goquery.Selection) {
			switch goquery.NodeName(child) {
			case "#text":
				if text := strings.TrimSpace(child.Text()); text != "" {
					parts = append(parts, text)
				}
			case "script", "style":
			default:
				walk(child)
			}
		})
	}
	walk(sel)
	return strings.Join(parts, "\n")
}
