package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/ports"
)

// ErrArticleNotFound is returned when a status update targets no row.
var ErrArticleNotFound = errors.New("article not found")

// DB is the part of pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// upsertConflict keeps author, source and published_at from the first write.
const upsertConflict = `ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	content = EXCLUDED.content,
	category = EXCLUDED.category,
	ingest_status = EXCLUDED.ingest_status,
	image_url = EXCLUDED.image_url,
	updated_at = NOW()
RETURNING article_id`

var articleColumns = []string{
	"a.article_id",
	"a.url",
	"a.title",
	"a.author",
	"a.category",
	"a.content",
	"a.published_at",
	"a.source",
	"a.image_url",
	"a.ingest_status",
	"a.created_at",
	"a.updated_at",
}

// PostgresRepository persists articles and analyses into Postgres.
type PostgresRepository struct {
	db DB
}

var _ ports.ArticleRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a pool (or anything with the same surface).
func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// NewPool opens a pgx pool and checks connectivity.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// UpsertArticle inserts the article or refreshes the mutable fields of the row
// with the same URL, returning the article id either way.
func (r *PostgresRepository) UpsertArticle(ctx context.Context, article domain.Article) (int64, error) {
	query, args, err := psql.Insert("article").
		Columns("title", "author", "category", "content", "published_at", "source", "url", "image_url", "ingest_status").
		Values(
			article.Title,
			article.Author,
			string(article.Category),
			article.Content,
			article.PublishedAt,
			article.Source,
			article.URL,
			article.ImageURL,
			string(article.Status),
		).
		Suffix(upsertConflict).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build upsert: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert article %s: %w", article.URL, err)
	}
	return id, nil
}

// UpdateStatus moves an article to a new lifecycle state.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, articleID int64, status domain.IngestStatus) error {
	query, args, err := psql.Update("article").
		Set("ingest_status", string(status)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update status of article %d: %w", articleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update status of article %d: %w", articleID, ErrArticleNotFound)
	}
	return nil
}

// ListAnalysisCandidates returns the newest unanalyzed articles that have content.
func (r *PostgresRepository) ListAnalysisCandidates(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args, err := psql.Select(articleColumns...).
		From("article a").
		Where(sq.Eq{"a.ingest_status": []string{string(domain.StatusPending), string(domain.StatusIngested)}}).
		Where(sq.NotEq{"a.content": ""}).
		Where("NOT EXISTS (SELECT 1 FROM analysis_result r WHERE r.article_id = a.article_id)").
		OrderBy("a.article_id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidate query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var (
			a        domain.Article
			category string
			status   string
		)
		if err := rows.Scan(
			&a.ID,
			&a.URL,
			&a.Title,
			&a.Author,
			&category,
			&a.Content,
			&a.PublishedAt,
			&a.Source,
			&a.ImageURL,
			&status,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		a.Category = domain.Category(category)
		a.Status = domain.IngestStatus(status)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// SaveAnalysis stores the result, its keywords and the ANALYZED status in one transaction.
func (r *PostgresRepository) SaveAnalysis(ctx context.Context, articleID int64, analysis domain.Analysis) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args, err := psql.Insert("analysis_result").
		Columns("article_id", "sentiment", "summary", "processed_at").
		Values(articleID, string(analysis.Sentiment), analysis.Summary, sq.Expr("NOW()")).
		Suffix("RETURNING result_id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build result insert: %w", err)
	}

	var resultID int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&resultID); err != nil {
		return 0, fmt.Errorf("insert analysis result for article %d: %w", articleID, err)
	}

	for _, keyword := range analysis.Keywords {
		query, args, err := psql.Insert("analysis_keywords").
			Columns("result_id", "keyword").
			Values(resultID, keyword).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build keyword insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert keyword %q: %w", keyword, err)
		}
	}

	query, args, err = psql.Update("article").
		Set("ingest_status", string(domain.StatusAnalyzed)).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build status update: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("mark article %d analyzed: %w", articleID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit analysis: %w", err)
	}
	return resultID, nil
}

// ListTrendInputs snapshots every analyzed article with a publish time and its keywords.
func (r *PostgresRepository) ListTrendInputs(ctx context.Context) ([]domain.TrendInput, error) {
	query, args, err := psql.Select(
		"r.result_id",
		"a.article_id",
		"a.published_at",
		"COALESCE(array_agg(k.keyword) FILTER (WHERE k.keyword IS NOT NULL), '{}') AS keywords",
	).
		From("analysis_result r").
		Join("article a ON a.article_id = r.article_id").
		LeftJoin("analysis_keywords k ON k.result_id = r.result_id").
		Where(sq.Eq{"a.ingest_status": string(domain.StatusAnalyzed)}).
		Where(sq.NotEq{"a.published_at": nil}).
		GroupBy("r.result_id", "a.article_id", "a.published_at").
		OrderBy("r.result_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build trend query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trend inputs: %w", err)
	}
	defer rows.Close()

	var inputs []domain.TrendInput
	for rows.Next() {
		var in domain.TrendInput
		if err := rows.Scan(&in.ResultID, &in.ArticleID, &in.PublishedAt, &in.Keywords); err != nil {
			return nil, fmt.Errorf("scan trend input: %w", err)
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return inputs, nil
}

// UpdateTrendScores writes a whole trend pass in one transaction.
func (r *PostgresRepository) UpdateTrendScores(ctx context.Context, scores []domain.TrendScore) error {
	if len(scores) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, s := range scores {
		query, args, err := psql.Update("analysis_result").
			Set("trend_score", s.Score).
			Where(sq.Eq{"result_id": s.ResultID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build trend update: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("update trend score of result %d: %w", s.ResultID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit trend scores: %w", err)
	}
	return nil
}
