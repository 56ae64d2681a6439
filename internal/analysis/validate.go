package analysis

import (
	"errors"
	"strings"

	"NewsAnalyzer/internal/domain"
)

// ErrRejected marks analyses that must not be persisted.
var ErrRejected = errors.New("analysis rejected")

// RejectionError lists which required fields were missing.
type RejectionError struct {
	MissingSummary   bool
	MissingSentiment bool
	MissingKeywords  bool
}

func (e *RejectionError) Error() string {
	var missing []string
	if e.MissingSummary {
		missing = append(missing, "summary")
	}
	if e.MissingSentiment {
		missing = append(missing, "sentiment")
	}
	if e.MissingKeywords {
		missing = append(missing, "keywords")
	}
	return ErrRejected.Error() + ": missing " + strings.Join(missing, ", ")
}

func (e *RejectionError) Unwrap() error {
	return ErrRejected
}

// Validate checks the parsed fields and normalizes them for storage.
// Summary, sentiment label and at least one non-blank keyword are required.
func Validate(f Fields) (domain.Analysis, error) {
	summary := strings.TrimSpace(f.Summary)
	label := strings.TrimSpace(f.Sentiment)
	keywords := CleanKeywords(f.Keywords)

	rejection := RejectionError{
		MissingSummary:   summary == "",
		MissingSentiment: label == "",
		MissingKeywords:  len(keywords) == 0,
	}
	if rejection.MissingSummary || rejection.MissingSentiment || rejection.MissingKeywords {
		return domain.Analysis{}, &rejection
	}

	return domain.Analysis{
		Summary:   summary,
		Sentiment: domain.NormalizeSentiment(label),
		Keywords:  keywords,
	}, nil
}

// CleanKeywords trims every keyword and drops the blank ones.
func CleanKeywords(keywords []string) []string {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		cleaned = append(cleaned, kw)
	}
	return cleaned
}
