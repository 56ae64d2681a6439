package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NewsAnalyzer/internal/analysis"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/infrastructure/llm"
	"NewsAnalyzer/internal/usecase"
)

// Pipeline is the subset of the use cases exposed over HTTP.
type Pipeline interface {
	Ingest(ctx context.Context) (usecase.IngestReport, error)
	Analyze(ctx context.Context, limit int) (usecase.AnalyzeReport, error)
	ScoreTrends(ctx context.Context) (usecase.TrendReport, error)
	AnalyzeText(ctx context.Context, title, content string) (domain.Analysis, error)
}

var _ Pipeline = (*usecase.Pipeline)(nil)

type analyzeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type analyzeResponse struct {
	Summary   string   `json:"summary"`
	Sentiment string   `json:"sentiment"`
	Keywords  []string `json:"keywords"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes health, metrics, ad-hoc analysis and manual job triggers.
type Server struct {
	echo     *echo.Echo
	pipeline Pipeline
	logger   *slog.Logger
	addr     string
}

// NewServer builds the router. Nothing listens until Start.
func NewServer(addr string, pipeline Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, pipeline: pipeline, logger: logger, addr: addr}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency_ms", v.Latency.Milliseconds()}
			if v.Error != nil {
				logger.Warn("request failed", append(attrs, "error", v.Error.Error())...)
				return nil
			}
			logger.Info("request completed", attrs...)
			return nil
		},
	}))

	e.GET("/health", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.POST("/analyze", s.analyze)

	jobs := e.Group("/jobs")
	jobs.POST("/ingest", s.runIngest)
	jobs.POST("/analyze", s.runAnalyze)
	jobs.POST("/trend", s.runTrend)

	return s
}

// Handler returns the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "content is required"})
	}

	result, err := s.pipeline.AnalyzeText(c.Request().Context(), req.Title, req.Content)
	switch {
	case err == nil:
	case errors.Is(err, analysis.ErrRejected):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, llm.ErrAnalyzerUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("ad-hoc analysis failed", "error", err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "analyzer call failed"})
	}

	return c.JSON(http.StatusOK, analyzeResponse{
		Summary:   result.Summary,
		Sentiment: string(result.Sentiment),
		Keywords:  result.Keywords,
	})
}

func (s *Server) runIngest(c echo.Context) error {
	report, err := s.pipeline.Ingest(c.Request().Context())
	if err != nil {
		return s.jobFailed(c, "ingest", err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) runAnalyze(c echo.Context) error {
	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid limit"})
	}

	report, err := s.pipeline.Analyze(c.Request().Context(), limit)
	if err != nil {
		return s.jobFailed(c, "analyze", err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) runTrend(c echo.Context) error {
	report, err := s.pipeline.ScoreTrends(c.Request().Context())
	if err != nil {
		return s.jobFailed(c, "trend", err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) jobFailed(c echo.Context, job string, err error) error {
	s.logger.Error("manual job failed", "job", job, "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
