package ports

import (
	"context"

	"NewsAnalyzer/internal/domain"
)

// ArticleSource lists fresh article links from configured sites.
type ArticleSource interface {
	Collect(ctx context.Context) ([]domain.ArticleRef, error)
}

// DetailFetcher downloads a single article page and extracts its raw fields.
type DetailFetcher interface {
	Fetch(ctx context.Context, url, sectionHint string) (domain.RawArticle, error)
}

// ArticleRepository persists articles, analyses and trend scores.
type ArticleRepository interface {
	UpsertArticle(ctx context.Context, article domain.Article) (int64, error)
	UpdateStatus(ctx context.Context, articleID int64, status domain.IngestStatus) error
	ListAnalysisCandidates(ctx context.Context, limit int) ([]domain.Article, error)
	SaveAnalysis(ctx context.Context, articleID int64, analysis domain.Analysis) (int64, error)
	ListTrendInputs(ctx context.Context) ([]domain.TrendInput, error)
	UpdateTrendScores(ctx context.Context, scores []domain.TrendScore) error
}

// Analyzer sends article text to a model and returns its raw answer.
type Analyzer interface {
	Analyze(ctx context.Context, title, content string) (string, error)
}

// Scheduler controls when pipeline steps execute.
type Scheduler interface {
	Schedule(name, spec string, job func(ctx context.Context)) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
