package domain

import (
	"errors"
	"time"
)

// UnknownAuthor is stored when the detail page carries no byline.
const UnknownAuthor = "UNKNOWN"

// ErrMissingURL is returned when a raw article has no natural key.
var ErrMissingURL = errors.New("article url is required")

// IngestStatus enumerates article lifecycle states.
type IngestStatus string

const (
	StatusPending  IngestStatus = "PENDING"
	StatusIngested IngestStatus = "INGESTED"
	StatusAnalyzed IngestStatus = "ANALYZED"
	StatusFailed   IngestStatus = "FAILED"
)

// FetchedStatus is the state of an article right after its page was fetched:
// INGESTED when the page yielded content, FAILED otherwise.
func FetchedStatus(content string) IngestStatus {
	if content == "" {
		return StatusFailed
	}
	return StatusIngested
}

// Terminal reports whether the pipeline never moves the article again on its own.
func (s IngestStatus) Terminal() bool {
	return s == StatusAnalyzed || s == StatusFailed
}

// ArticleRef is a link discovered on a section listing or feed.
type ArticleRef struct {
	URL       string
	Title     string
	Section   string
	Thumbnail string
}

// RawArticle is what a detail fetcher returns; any field except URL may be empty.
type RawArticle struct {
	URL         string
	Title       string
	Author      string
	Category    string
	Content     string
	PublishedAt *time.Time
	Source      string
	ImageURL    string
	Status      IngestStatus
}

// Article is the normalized record persisted in the article table.
type Article struct {
	ID          int64
	URL         string
	Title       string
	Author      string
	Category    Category
	Content     string
	PublishedAt *time.Time
	Source      string
	ImageURL    string
	Status      IngestStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Analysis is a validated LLM analysis ready to be stored.
type Analysis struct {
	Summary   string
	Sentiment Sentiment
	Keywords  []string
}

// AnalysisResult is the persisted analysis owned by exactly one article.
type AnalysisResult struct {
	ID          int64
	ArticleID   int64
	Summary     string
	Sentiment   Sentiment
	Keywords    []string
	TrendScore  *float64
	CreatedAt   time.Time
	ProcessedAt time.Time
}

// TrendInput is the per-result snapshot the trend scorer works on.
type TrendInput struct {
	ArticleID   int64
	ResultID    int64
	PublishedAt time.Time
	Keywords    []string
}

// TrendScore carries the computed components for one analysis result.
type TrendScore struct {
	ArticleID int64
	ResultID  int64
	Recency   float64
	Topical   float64
	Score     float64
}
