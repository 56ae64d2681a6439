package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"NewsAnalyzer/internal/analysis"
	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/infrastructure/llm"
	"NewsAnalyzer/internal/logging"
	"NewsAnalyzer/internal/usecase"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) Ingest(ctx context.Context) (usecase.IngestReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(usecase.IngestReport), args.Error(1)
}

func (m *mockPipeline) Analyze(ctx context.Context, limit int) (usecase.AnalyzeReport, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(usecase.AnalyzeReport), args.Error(1)
}

func (m *mockPipeline) ScoreTrends(ctx context.Context) (usecase.TrendReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(usecase.TrendReport), args.Error(1)
}

func (m *mockPipeline) AnalyzeText(ctx context.Context, title, content string) (domain.Analysis, error) {
	args := m.Called(ctx, title, content)
	return args.Get(0).(domain.Analysis), args.Error(1)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(":0", &mockPipeline{}, logging.Discard())

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(":0", &mockPipeline{}, logging.Discard())

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAnalyzeEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		result     domain.Analysis
		err        error
		callsLLM   bool
		wantStatus int
		wantBody   string
	}{
		{
			name:       "success",
			body:       `{"title":"제목","content":"본문"}`,
			result:     domain.Analysis{Summary: "요약", Sentiment: domain.SentimentPositive, Keywords: []string{"a"}},
			callsLLM:   true,
			wantStatus: http.StatusOK,
			wantBody:   `{"summary":"요약","sentiment":"POSITIVE","keywords":["a"]}`,
		},
		{
			name:       "missing content",
			body:       `{"title":"제목"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"title":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "rejected",
			body:       `{"title":"t","content":"c"}`,
			err:        &analysis.RejectionError{MissingKeywords: true},
			callsLLM:   true,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "no analyzer configured",
			body:       `{"title":"t","content":"c"}`,
			err:        fmt.Errorf("analyze: %w", llm.ErrAnalyzerUnavailable),
			callsLLM:   true,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "upstream failure",
			body:       `{"title":"t","content":"c"}`,
			err:        errors.New("analyze: status 500"),
			callsLLM:   true,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &mockPipeline{}
			if tt.callsLLM {
				p.On("AnalyzeText", mock.Anything, mock.Anything, mock.Anything).Return(tt.result, tt.err).Once()
			}
			s := NewServer(":0", p, logging.Discard())

			rec := do(t, s, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			p.AssertExpectations(t)
		})
	}
}

func TestJobEndpoints(t *testing.T) {
	p := &mockPipeline{}
	p.On("Ingest", mock.Anything).Return(usecase.IngestReport{RunID: "r1", Discovered: 3, Ingested: 2}, nil).Once()
	p.On("Analyze", mock.Anything, 7).Return(usecase.AnalyzeReport{RunID: "r2", Analyzed: 7}, nil).Once()
	p.On("Analyze", mock.Anything, 0).Return(usecase.AnalyzeReport{}, errors.New("list candidates: connection refused")).Once()
	p.On("ScoreTrends", mock.Anything).Return(usecase.TrendReport{RunID: "r3", Scored: 4}, nil).Once()
	s := NewServer(":0", p, logging.Discard())

	rec := do(t, s, http.MethodPost, "/jobs/ingest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ingest usecase.IngestReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ingest))
	assert.Equal(t, 2, ingest.Ingested)

	rec = do(t, s, http.MethodPost, "/jobs/analyze?limit=7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"analyzed":7`)

	rec = do(t, s, http.MethodPost, "/jobs/analyze", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = do(t, s, http.MethodPost, "/jobs/analyze?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/jobs/trend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"scored":4`)

	p.AssertExpectations(t)
}
