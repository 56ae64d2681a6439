package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS article (
		article_id    BIGSERIAL PRIMARY KEY,
		title         TEXT NOT NULL DEFAULT '',
		author        TEXT NOT NULL DEFAULT 'UNKNOWN',
		category      TEXT NOT NULL DEFAULT 'SOCIETY'
			CHECK (category IN ('POLITICS','ECONOMY','SOCIETY','CULTURE','WORLD','IT')),
		content       TEXT NOT NULL DEFAULT '',
		published_at  TIMESTAMPTZ,
		source        TEXT NOT NULL DEFAULT '',
		url           TEXT NOT NULL UNIQUE,
		image_url     TEXT NOT NULL DEFAULT '',
		ingest_status TEXT NOT NULL DEFAULT 'PENDING'
			CHECK (ingest_status IN ('PENDING','INGESTED','ANALYZED','FAILED')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_article_status ON article (ingest_status)`,
	`CREATE TABLE IF NOT EXISTS analysis_result (
		result_id    BIGSERIAL PRIMARY KEY,
		article_id   BIGINT NOT NULL UNIQUE REFERENCES article(article_id),
		sentiment    TEXT NOT NULL
			CHECK (sentiment IN ('POSITIVE','NEUTRAL','NEGATIVE','HOPEFUL','ANXIOUS')),
		summary      TEXT NOT NULL DEFAULT '',
		trend_score  DOUBLE PRECISION,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_keywords (
		result_id BIGINT NOT NULL REFERENCES analysis_result(result_id),
		keyword   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_keywords_result ON analysis_keywords (result_id)`,
}

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return applySchema(ctx, db)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func applySchema(ctx context.Context, db execer) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
