package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
database:
  dsn: postgres://news:news@db:5432/news
pipeline:
  batchSize: 10
trend:
  windowDays: 2
llm:
  model: gpt-4.1-mini
  timeout: 30s
scheduler:
  trendCron: "15 * * * *"
  timezone: UTC
sites:
  - name: feeds
    scanner: rss
    categories:
      - name: ECONOMY
        url: https://news.example/rss/economy
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Pipeline.BatchSize)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.Equal(t, 3*24*time.Hour, cfg.Trend.Window())
	assert.Equal(t, 7*24*time.Hour, cfg.Trend.HalfLife())
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "naver", cfg.Sites[0].Scanner)
	assert.Len(t, cfg.Sites[0].Categories, 6)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, sampleYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://news:news@db:5432/news", cfg.Database.DSN)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 10, cfg.Pipeline.BatchSize)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.Equal(t, 2*24*time.Hour, cfg.Trend.Window())
	assert.Equal(t, 7*24*time.Hour, cfg.Trend.HalfLife())
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "15 * * * *", cfg.Scheduler.TrendCron)
	assert.Empty(t, cfg.Scheduler.IngestCron)
	assert.Equal(t, time.UTC, cfg.Scheduler.Location())
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "rss", cfg.Sites[0].Scanner)
}

func TestLoadUsesPathFromEnvironment(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, "pipeline:\n  concurrency: 3\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Pipeline.Concurrency)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, sampleYAML)
	t.Setenv("DATABASE_DSN", "postgres://env/override")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("PIPELINE_BATCH_SIZE", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/override", cfg.Database.DSN)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 2, cfg.Pipeline.BatchSize)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "pipeline: [not, a, map]"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "pipeline:\n  batchSize: -1\n"))
	require.ErrorContains(t, err, "batchSize")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Pipeline.Concurrency = 0
	cfg.Trend.HalfLifeDays = 0
	cfg.Sites = append(cfg.Sites, SiteConfig{Name: "nameless"})

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "concurrency")
	assert.ErrorContains(t, err, "halfLifeDays")
	assert.ErrorContains(t, err, "nameless")
}

func TestUnknownTimezoneFallsBackToUTC(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Mars/Olympus"
	cfg.bindTimezone()
	assert.Equal(t, time.UTC, cfg.Scheduler.Location())
}
