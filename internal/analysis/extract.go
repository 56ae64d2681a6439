// Package analysis turns free-form analyzer output into validated analysis records.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	openingFence = regexp.MustCompile("^```[a-zA-Z0-9_]*\\s*")
	closingFence = regexp.MustCompile("\\s*```$")
)

// errNotObject is the degradation cause when the payload parses but is not a JSON object.
var errNotObject = errors.New("payload is not a json object")

// Fields are the loosely typed values recovered from the analyzer payload.
type Fields struct {
	Summary   string
	Sentiment string
	Keywords  []string
}

// DegradedFields is substituted when the payload cannot be parsed.
func DegradedFields() Fields {
	return Fields{Summary: "", Sentiment: "neutral", Keywords: []string{}}
}

// Outcome is the tagged parse result: either the parsed fields, or the degraded
// defaults together with the reason parsing failed.
type Outcome struct {
	Fields   Fields
	Degraded bool
	Cause    error
	Payload  string
}

// ExtractJSON recovers the JSON object from analyzer output that may be wrapped
// in a code fence or surrounded by prose. It never fails; the result may still
// be invalid JSON.
func ExtractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "```") {
		text = openingFence.ReplaceAllString(text, "")
		text = strings.TrimSpace(closingFence.ReplaceAllString(text, ""))
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// Parse extracts and decodes the analyzer payload.
func Parse(raw string) Outcome {
	payload := ExtractJSON(raw)

	var doc map[string]any
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return degraded(payload, fmt.Errorf("decode analyzer payload: %w", err))
	}
	if doc == nil {
		return degraded(payload, errNotObject)
	}

	fields := Fields{
		Summary:   asString(doc["summary"]),
		Sentiment: asString(doc["sentiment"]),
	}
	if list, ok := doc["keywords"].([]any); ok {
		fields.Keywords = make([]string, 0, len(list))
		for _, kw := range list {
			fields.Keywords = append(fields.Keywords, asString(kw))
		}
	}

	return Outcome{Fields: fields, Payload: payload}
}

func degraded(payload string, cause error) Outcome {
	return Outcome{
		Fields:   DegradedFields(),
		Degraded: true,
		Cause:    cause,
		Payload:  payload,
	}
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
