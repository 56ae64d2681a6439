package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsAnalyzer/internal/domain"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestRecency(t *testing.T) {
	t.Parallel()

	halfLife := DefaultParams().HalfLife

	assert.InDelta(t, 1.0, Recency(now, now, halfLife), 1e-9)
	assert.InDelta(t, 0.5, Recency(now, now.Add(-7*day), halfLife), 1e-9)
	assert.InDelta(t, 0.25, Recency(now, now.Add(-14*day), halfLife), 1e-9)
	assert.InDelta(t, 1.0, Recency(now, now.Add(48*time.Hour), halfLife), 1e-9, "future dates are clamped")
	assert.Zero(t, Recency(now, now, 0))
}

func TestBlendClamps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.35, Blend(0.5, 0))
	assert.Equal(t, 1.0, Blend(1, 1))
	assert.Equal(t, 0.0, Blend(0, 0))
	assert.Equal(t, 1.0, Blend(5, 5))
	assert.Equal(t, 0.0, Blend(-3, -1))

	for r := 0.0; r <= 1.0; r += 0.05 {
		for tp := 0.0; tp <= 1.0; tp += 0.05 {
			s := Blend(r, tp)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestComputeWeekOldArticleOutsideWindow(t *testing.T) {
	t.Parallel()

	scores := Compute(now, []domain.TrendInput{
		{ArticleID: 1, ResultID: 10, PublishedAt: now.Add(-7 * day), Keywords: []string{"금리"}},
	}, DefaultParams())

	require.Len(t, scores, 1)
	assert.Equal(t, int64(10), scores[0].ResultID)
	assert.Zero(t, scores[0].Topical)
	assert.Equal(t, 0.35, scores[0].Score)
}

func TestComputeTopicalFrequency(t *testing.T) {
	t.Parallel()

	inputs := []domain.TrendInput{
		{ArticleID: 1, ResultID: 1, PublishedAt: now, Keywords: []string{"금리", "물가", " 금리 "}},
		{ArticleID: 2, ResultID: 2, PublishedAt: now.Add(-time.Hour), Keywords: []string{"금리"}},
		{ArticleID: 3, ResultID: 3, PublishedAt: now.Add(-2 * day), Keywords: []string{"반도체", ""}},
		{ArticleID: 4, ResultID: 4, PublishedAt: now.Add(-10 * day), Keywords: []string{"금리", "선거"}},
		{ArticleID: 5, ResultID: 5, PublishedAt: now, Keywords: nil},
	}

	scores := Compute(now, inputs, DefaultParams())
	require.Len(t, scores, len(inputs))

	// 금리 appears in 2 recent articles (max), 물가 and 반도체 in 1.
	assert.InDelta(t, (1.0+0.5)/2, scores[0].Topical, 1e-9)
	assert.InDelta(t, 1.0, scores[1].Topical, 1e-9)
	assert.InDelta(t, 0.5, scores[2].Topical, 1e-9)
	// Out-of-window articles still score against the window; 선거 has zero frequency and is skipped.
	assert.InDelta(t, 1.0, scores[3].Topical, 1e-9)
	assert.Zero(t, scores[4].Topical)

	assert.Equal(t, Blend(1, 0.75), scores[0].Score)
	for _, s := range scores {
		assert.GreaterOrEqual(t, s.Score, 0.0)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
}

func TestComputeEmptyWindow(t *testing.T) {
	t.Parallel()

	scores := Compute(now, []domain.TrendInput{
		{ArticleID: 1, ResultID: 1, PublishedAt: now.Add(-30 * day), Keywords: []string{"a"}},
	}, DefaultParams())

	require.Len(t, scores, 1)
	assert.Zero(t, scores[0].Topical)
	assert.Empty(t, Compute(now, nil, DefaultParams()))
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []domain.TrendInput{
		{ArticleID: 1, ResultID: 1, PublishedAt: now.Add(-time.Hour), Keywords: []string{"a", "b"}},
		{ArticleID: 2, ResultID: 2, PublishedAt: now.Add(-26 * time.Hour), Keywords: []string{"b", "c"}},
		{ArticleID: 3, ResultID: 3, PublishedAt: now.Add(-5 * day), Keywords: []string{"c"}},
	}

	first := Compute(now, inputs, DefaultParams())
	second := Compute(now, inputs, DefaultParams())
	assert.Equal(t, first, second)
}
