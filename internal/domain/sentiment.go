package domain

import "strings"

// Sentiment is the storage-safe sentiment enumeration.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentHopeful  Sentiment = "HOPEFUL"
	SentimentAnxious  Sentiment = "ANXIOUS"
)

var allowedSentiments = map[Sentiment]struct{}{
	SentimentPositive: {},
	SentimentNeutral:  {},
	SentimentNegative: {},
	SentimentHopeful:  {},
	SentimentAnxious:  {},
}

// Labels the model may emit that the store does not accept directly.
var sentimentSynonyms = map[string]Sentiment{
	"FEARFUL": SentimentAnxious,
	"FEAR":    SentimentAnxious,
	"AFRAID":  SentimentAnxious,
	"ANGRY":   SentimentNegative,
	"SAD":     SentimentNegative,
}

// NormalizeSentiment maps a free-form label onto the enumeration, first via the
// synonym table and then via the allow-list. Anything else becomes NEUTRAL.
func NormalizeSentiment(label string) Sentiment {
	key := strings.ToUpper(strings.TrimSpace(label))
	if mapped, ok := sentimentSynonyms[key]; ok {
		return mapped
	}

	s := Sentiment(key)
	if _, ok := allowedSentiments[s]; !ok {
		return SentimentNeutral
	}
	return s
}
