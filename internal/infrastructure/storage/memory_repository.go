package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// MemoryRepository keeps everything in process memory with the same semantics
// as PostgresRepository. It backs dry runs without a DSN and tests.
type MemoryRepository struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int64
	nextRes  int64
	articles map[int64]*domain.Article
	byURL    map[string]int64
	results  map[int64]*domain.AnalysisResult // keyed by article id
}

var _ ports.ArticleRepository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:      time.Now,
		articles: map[int64]*domain.Article{},
		byURL:    map[string]int64{},
		results:  map[int64]*domain.AnalysisResult{},
	}
}

// UpsertArticle inserts the article or refreshes the mutable fields of the one with the same URL.
func (m *MemoryRepository) UpsertArticle(_ context.Context, article domain.Article) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if id, ok := m.byURL[article.URL]; ok {
		stored := m.articles[id]
		stored.Title = article.Title
		stored.Content = article.Content
		stored.Category = article.Category
		stored.Status = article.Status
		stored.ImageURL = article.ImageURL
		stored.UpdatedAt = now
		return id, nil
	}

	m.nextID++
	article.ID = m.nextID
	article.CreatedAt = now
	article.UpdatedAt = now
	m.articles[article.ID] = &article
	m.byURL[article.URL] = article.ID
	return article.ID, nil
}

// UpdateStatus sets the ingest status of an existing article.
func (m *MemoryRepository) UpdateStatus(_ context.Context, articleID int64, status domain.IngestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.articles[articleID]
	if !ok {
		return fmt.Errorf("update status of article %d: %w", articleID, ErrArticleNotFound)
	}
	stored.Status = status
	stored.UpdatedAt = m.now()
	return nil
}

// ListAnalysisCandidates returns up to limit unanalyzed articles with content, newest first.
func (m *MemoryRepository) ListAnalysisCandidates(_ context.Context, limit int) ([]domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 {
		return nil, nil
	}

	var candidates []domain.Article
	for id, a := range m.articles {
		if a.Status != domain.StatusPending && a.Status != domain.StatusIngested {
			continue
		}
		if a.Content == "" {
			continue
		}
		if _, analyzed := m.results[id]; analyzed {
			continue
		}
		candidates = append(candidates, *a)
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID > candidates[j].ID })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// SaveAnalysis stores the analysis with its keywords and marks the article ANALYZED.
func (m *MemoryRepository) SaveAnalysis(_ context.Context, articleID int64, analysis domain.Analysis) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.articles[articleID]
	if !ok {
		return 0, fmt.Errorf("insert analysis result for article %d: %w", articleID, ErrArticleNotFound)
	}
	if _, exists := m.results[articleID]; exists {
		return 0, fmt.Errorf("insert analysis result for article %d: result already exists", articleID)
	}

	now := m.now()
	m.nextRes++
	m.results[articleID] = &domain.AnalysisResult{
		ID:          m.nextRes,
		ArticleID:   articleID,
		Summary:     analysis.Summary,
		Sentiment:   analysis.Sentiment,
		Keywords:    slices.Clone(analysis.Keywords),
		CreatedAt:   now,
		ProcessedAt: now,
	}
	stored.Status = domain.StatusAnalyzed
	stored.UpdatedAt = now
	return m.nextRes, nil
}

// ListTrendInputs snapshots every analyzed article that has a publish time.
func (m *MemoryRepository) ListTrendInputs(_ context.Context) ([]domain.TrendInput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var inputs []domain.TrendInput
	for articleID, res := range m.results {
		a := m.articles[articleID]
		if a.Status != domain.StatusAnalyzed || a.PublishedAt == nil {
			continue
		}
		inputs = append(inputs, domain.TrendInput{
			ArticleID:   articleID,
			ResultID:    res.ID,
			PublishedAt: *a.PublishedAt,
			Keywords:    slices.Clone(res.Keywords),
		})
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].ResultID < inputs[j].ResultID })
	return inputs, nil
}

// UpdateTrendScores writes the scores onto their analysis results.
func (m *MemoryRepository) UpdateTrendScores(_ context.Context, scores []domain.TrendScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byResult := make(map[int64]*domain.AnalysisResult, len(m.results))
	for _, res := range m.results {
		byResult[res.ID] = res
	}
	for _, s := range scores {
		if res, ok := byResult[s.ResultID]; ok {
			score := s.Score
			res.TrendScore = &score
		}
	}
	return nil
}

// Article returns a copy of the stored article.
func (m *MemoryRepository) Article(id int64) (domain.Article, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[id]
	if !ok {
		return domain.Article{}, false
	}
	return *a, true
}

// Result returns a copy of the analysis owned by the article.
func (m *MemoryRepository) Result(articleID int64) (domain.AnalysisResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.results[articleID]
	if !ok {
		return domain.AnalysisResult{}, false
	}
	out := *res
	out.Keywords = slices.Clone(res.Keywords)
	return out, true
}

// Len reports how many articles are stored.
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.articles)
}
