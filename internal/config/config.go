package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Seoul"
	configPathEnv   = "NEWS_ANALYZER_CONFIG"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Trend     TrendConfig     `yaml:"trend"`
	LLM       LLMConfig       `yaml:"llm"`
	ML        MLConfig        `yaml:"ml"`
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sites     []SiteConfig    `yaml:"sites"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN selects
// the in-memory repository.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
}

// SchedulerConfig defines when each pipeline step runs. An empty spec disables the job.
type SchedulerConfig struct {
	IngestCron  string         `yaml:"ingestCron"`
	AnalyzeCron string         `yaml:"analyzeCron"`
	TrendCron   string         `yaml:"trendCron"`
	Timezone    string         `yaml:"timezone"`
	location    *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PipelineConfig bounds a single ingest or analyze run.
type PipelineConfig struct {
	BatchSize    int           `yaml:"batchSize"`
	Concurrency  int           `yaml:"concurrency"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
}

// TrendConfig tunes the trend scorer.
type TrendConfig struct {
	WindowDays   float64 `yaml:"windowDays"`
	HalfLifeDays float64 `yaml:"halfLifeDays"`
}

// Window is the trailing window used for keyword frequency.
func (t TrendConfig) Window() time.Duration {
	return days(t.WindowDays)
}

// HalfLife is the recency decay half-life.
func (t TrendConfig) HalfLife() time.Duration {
	return days(t.HalfLifeDays)
}

// LLMConfig defines how to contact an OpenAI-compatible chat API.
type LLMConfig struct {
	BaseURL           string        `yaml:"baseUrl"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"apiKey"`
	SystemPrompt      string        `yaml:"systemPrompt"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute float64       `yaml:"requestsPerMinute"`
	Burst             int           `yaml:"burst"`
	MaxRetries        int           `yaml:"maxRetries"`
	Temperature       float32       `yaml:"temperature"`
}

// MLConfig describes a self-hosted analysis service used when no LLM key is set.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// HTTPConfig configures the API server started by `serve`.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig selects level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Limit      int               `yaml:"limit"`
	Categories []CategoryConfig  `yaml:"categories"`
	Options    map[string]string `yaml:"options"`
}

// CategoryConfig is a section code (Naver) or a feed (RSS); URL is optional for sections.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// envOverrides lists the settings that may come from the environment or a .env file.
type envOverrides struct {
	DatabaseDSN  string `envconfig:"DATABASE_DSN"`
	LLMAPIKey    string `envconfig:"LLM_API_KEY"`
	LLMBaseURL   string `envconfig:"LLM_BASE_URL"`
	LLMModel     string `envconfig:"LLM_MODEL"`
	MLURL        string `envconfig:"ML_INFERENCE_URL"`
	MLAPIKey     string `envconfig:"ML_API_KEY"`
	HTTPAddr     string `envconfig:"HTTP_ADDR"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
	LogFormat    string `envconfig:"LOG_FORMAT"`
	BatchSize    int    `envconfig:"PIPELINE_BATCH_SIZE"`
	Concurrency  int    `envconfig:"PIPELINE_CONCURRENCY"`
	IngestCron   string `envconfig:"INGEST_CRON"`
	AnalyzeCron  string `envconfig:"ANALYZE_CRON"`
	TrendCron    string `envconfig:"TREND_CRON"`
	TimezoneName string `envconfig:"SCHEDULER_TIMEZONE"`
}

// Load reads the YAML file (path argument, else NEWS_ANALYZER_CONFIG), merges it
// over the defaults and applies environment overrides. A missing default-path
// file is not an error.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Pipeline.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.batchSize must be positive, got %d", c.Pipeline.BatchSize))
	}
	if c.Pipeline.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.concurrency must be positive, got %d", c.Pipeline.Concurrency))
	}
	if c.Trend.WindowDays <= 0 {
		errs = append(errs, fmt.Errorf("trend.windowDays must be positive, got %v", c.Trend.WindowDays))
	}
	if c.Trend.HalfLifeDays <= 0 {
		errs = append(errs, fmt.Errorf("trend.halfLifeDays must be positive, got %v", c.Trend.HalfLifeDays))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout))
	}
	for i, site := range c.Sites {
		if site.Scanner == "" {
			errs = append(errs, fmt.Errorf("sites[%d] (%s): scanner is required", i, site.Name))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	setString(&c.Database.DSN, env.DatabaseDSN)
	setString(&c.LLM.APIKey, env.LLMAPIKey)
	setString(&c.LLM.BaseURL, env.LLMBaseURL)
	setString(&c.LLM.Model, env.LLMModel)
	setString(&c.ML.InferenceURL, env.MLURL)
	setString(&c.ML.APIKey, env.MLAPIKey)
	setString(&c.HTTP.Addr, env.HTTPAddr)
	setString(&c.Logging.Level, env.LogLevel)
	setString(&c.Logging.Format, env.LogFormat)
	setString(&c.Scheduler.IngestCron, env.IngestCron)
	setString(&c.Scheduler.AnalyzeCron, env.AnalyzeCron)
	setString(&c.Scheduler.TrendCron, env.TrendCron)
	setString(&c.Scheduler.Timezone, env.TimezoneName)
	if env.BatchSize != 0 {
		c.Pipeline.BatchSize = env.BatchSize
	}
	if env.Concurrency != 0 {
		c.Pipeline.Concurrency = env.Concurrency
	}
	return nil
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to UTC", tz)
		loc = time.UTC
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.MaxConns > 0 {
		base.Database.MaxConns = override.Database.MaxConns
	}

	// A scheduler section replaces all three specs; a blank spec disables its job.
	if override.Scheduler.Timezone != "" || override.Scheduler.IngestCron != "" ||
		override.Scheduler.AnalyzeCron != "" || override.Scheduler.TrendCron != "" {
		base.Scheduler.IngestCron = override.Scheduler.IngestCron
		base.Scheduler.AnalyzeCron = override.Scheduler.AnalyzeCron
		base.Scheduler.TrendCron = override.Scheduler.TrendCron
	}
	setString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	if override.Pipeline.BatchSize != 0 {
		base.Pipeline.BatchSize = override.Pipeline.BatchSize
	}
	if override.Pipeline.Concurrency != 0 {
		base.Pipeline.Concurrency = override.Pipeline.Concurrency
	}
	if override.Pipeline.FetchTimeout != 0 {
		base.Pipeline.FetchTimeout = override.Pipeline.FetchTimeout
	}

	if override.Trend.WindowDays != 0 {
		base.Trend.WindowDays = override.Trend.WindowDays
	}
	if override.Trend.HalfLifeDays != 0 {
		base.Trend.HalfLifeDays = override.Trend.HalfLifeDays
	}

	setString(&base.LLM.BaseURL, override.LLM.BaseURL)
	setString(&base.LLM.Model, override.LLM.Model)
	setString(&base.LLM.APIKey, override.LLM.APIKey)
	setString(&base.LLM.SystemPrompt, override.LLM.SystemPrompt)
	if override.LLM.Timeout != 0 {
		base.LLM.Timeout = override.LLM.Timeout
	}
	if override.LLM.RequestsPerMinute != 0 {
		base.LLM.RequestsPerMinute = override.LLM.RequestsPerMinute
	}
	if override.LLM.Burst != 0 {
		base.LLM.Burst = override.LLM.Burst
	}
	if override.LLM.MaxRetries != 0 {
		base.LLM.MaxRetries = override.LLM.MaxRetries
	}
	if override.LLM.Temperature != 0 {
		base.LLM.Temperature = override.LLM.Temperature
	}

	setString(&base.ML.InferenceURL, override.ML.InferenceURL)
	setString(&base.ML.APIKey, override.ML.APIKey)

	setString(&base.HTTP.Addr, override.HTTP.Addr)

	setString(&base.Logging.Level, override.Logging.Level)
	setString(&base.Logging.Format, override.Logging.Format)

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "", MaxConns: 4},
		Scheduler: SchedulerConfig{
			IngestCron:  "*/30 * * * *",
			AnalyzeCron: "*/10 * * * *",
			TrendCron:   "0 * * * *",
			Timezone:    defaultTimezone,
		},
		Pipeline: PipelineConfig{BatchSize: 5, Concurrency: 1, FetchTimeout: 20 * time.Second},
		Trend:    TrendConfig{WindowDays: 3, HalfLifeDays: 7},
		LLM: LLMConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Timeout:           60 * time.Second,
			RequestsPerMinute: 30,
			Burst:             1,
			MaxRetries:        3,
			Temperature:       0.2,
		},
		HTTP:    HTTPConfig{Addr: ":8080"},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Sites: []SiteConfig{
			{
				Name:    "naver-news",
				Scanner: "naver",
				Limit:   20,
				Categories: []CategoryConfig{
					{Name: "100"}, {Name: "101"}, {Name: "102"},
					{Name: "103"}, {Name: "104"}, {Name: "105"},
				},
			},
		},
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func days(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}
