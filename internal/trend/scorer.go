// Package trend scores analyzed articles by recency and keyword popularity.
package trend

import (
	"math"
	"strings"
	"time"

	"NewsAnalyzer/internal/domain"
)

const (
	recencyWeight = 0.7
	topicalWeight = 0.3

	day = 24 * time.Hour
)

// Params configure the scorer.
type Params struct {
	HalfLife time.Duration
	Window   time.Duration
}

// DefaultParams returns a 7 day half-life and a 3 day topical window.
func DefaultParams() Params {
	return Params{HalfLife: 7 * day, Window: 3 * day}
}

// Recency decays exponentially with article age. Future-dated articles count as fresh.
func Recency(now, published time.Time, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	ageDays := now.Sub(published).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	lambda := math.Ln2 / (halfLife.Hours() / 24)
	return math.Exp(-lambda * ageDays)
}

// Blend combines the component scores, rounds to two decimals and clamps to [0, 1].
func Blend(recency, topical float64) float64 {
	score := math.Round((recencyWeight*recency+topicalWeight*topical)*100) / 100
	return math.Max(0, math.Min(1, score))
}

// Compute scores every input against one consistent snapshot of the trailing window.
func Compute(now time.Time, inputs []domain.TrendInput, p Params) []domain.TrendScore {
	keywordSets := make([]map[string]struct{}, len(inputs))
	for i, in := range inputs {
		keywordSets[i] = keywordSet(in.Keywords)
	}

	cutoff := now.Add(-p.Window)
	frequency := make(map[string]int)
	for i, in := range inputs {
		if in.PublishedAt.Before(cutoff) {
			continue
		}
		for kw := range keywordSets[i] {
			frequency[kw]++
		}
	}

	maxFreq := 0
	for _, n := range frequency {
		maxFreq = max(maxFreq, n)
	}
	if maxFreq == 0 {
		maxFreq = 1
	}

	scores := make([]domain.TrendScore, 0, len(inputs))
	for i, in := range inputs {
		recency := Recency(now, in.PublishedAt, p.HalfLife)
		topical := topicalScore(keywordSets[i], frequency, maxFreq)
		scores = append(scores, domain.TrendScore{
			ArticleID: in.ArticleID,
			ResultID:  in.ResultID,
			Recency:   recency,
			Topical:   topical,
			Score:     Blend(recency, topical),
		})
	}
	return scores
}

func topicalScore(keywords map[string]struct{}, frequency map[string]int, maxFreq int) float64 {
	var (
		sum     float64
		counted int
	)
	for kw := range keywords {
		n := frequency[kw]
		if n == 0 {
			continue
		}
		sum += float64(n) / float64(maxFreq)
		counted++
	}
	if counted == 0 {
		return 0
	}
	return sum / float64(counted)
}

func keywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		set[kw] = struct{}{}
	}
	return set
}
