package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"NewsAnalyzer/internal/config"
	"NewsAnalyzer/internal/ports"
)

// ErrAnalyzerUnavailable is returned when no analyzer backend is configured.
var ErrAnalyzerUnavailable = errors.New("analyzer is not configured")

// ChatAnalyzer asks an OpenAI-compatible chat model to analyze an article.
type ChatAnalyzer struct {
	model        model.BaseChatModel
	limiter      *rate.Limiter
	systemPrompt string
	temperature  float32
	maxRetries   int
	baseDelay    time.Duration
	logger       *slog.Logger
}

var _ ports.Analyzer = (*ChatAnalyzer)(nil)

// NewChatAnalyzer builds the eino OpenAI chat model from configuration.
func NewChatAnalyzer(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*ChatAnalyzer, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("llm client misconfigured: %w", ErrAnalyzerUnavailable)
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}

	return NewChatAnalyzerWithModel(cm, cfg, logger), nil
}

// NewChatAnalyzerWithModel wraps an existing chat model.
func NewChatAnalyzerWithModel(cm model.BaseChatModel, cfg config.LLMConfig, logger *slog.Logger) *ChatAnalyzer {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60.0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &ChatAnalyzer{
		model:        cm,
		limiter:      rate.NewLimiter(limit, burst),
		systemPrompt: systemPrompt(cfg.SystemPrompt),
		temperature:  cfg.Temperature,
		maxRetries:   max(cfg.MaxRetries, 0),
		baseDelay:    2 * time.Second,
		logger:       logger,
	}
}

// Analyze returns the model's raw answer. Rate-limit responses are retried
// with exponential backoff; any other failure is returned as is.
func (a *ChatAnalyzer) Analyze(ctx context.Context, title, content string) (string, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: a.systemPrompt},
		{Role: schema.User, Content: buildUserPrompt(title, content)},
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if err := a.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for rate limiter: %w", err)
		}

		resp, err := a.model.Generate(ctx, messages, model.WithTemperature(a.temperature))
		if err == nil {
			return resp.Content, nil
		}

		if !isRateLimited(err) {
			return "", fmt.Errorf("generate analysis: %w", err)
		}
		lastErr = err
		if attempt == a.maxRetries {
			break
		}

		delay := a.baseDelay * time.Duration(1<<attempt)
		a.debug("rate limited, backing off", "attempt", attempt+1, "delay", delay)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("generate analysis: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return "", fmt.Errorf("generate analysis after %d attempts: %w", a.maxRetries+1, lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

func (a *ChatAnalyzer) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

// Disabled is the analyzer used when neither an LLM key nor an ML endpoint is configured.
type Disabled struct{}

var _ ports.Analyzer = Disabled{}

func (Disabled) Analyze(context.Context, string, string) (string, error) {
	return "", ErrAnalyzerUnavailable
}
