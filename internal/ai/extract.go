package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// extractStage rewrites the candidate text before the next parse attempt.
type extractStage func(text string) string

// extractStages are tried in order until one yields valid JSON.
var extractStages = []extractStage{
	strings.TrimSpace,
	stripFences,
	likelyJSONSpan,
}

var (
	openFence  = regexp.MustCompile("(?i)```json\\s*")
	closeFence = regexp.MustCompile("```\\s*")
)

func stripFences(text string) string {
	text = openFence.ReplaceAllString(text, "")
	text = closeFence.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// likelyJSONSpan cuts from the first opening bracket to the last matching
// closing bracket, preferring whichever of object or array starts first.
func likelyJSONSpan(text string) string {
	obj := span(text, "{", "}")
	arr := span(text, "[", "]")
	switch {
	case obj == "":
		return arr
	case arr == "":
		return obj
	case strings.Index(text, "[") < strings.Index(text, "{"):
		return arr
	default:
		return obj
	}
}

func span(text, open, close string) string {
	first := strings.Index(text, open)
	last := strings.LastIndex(text, close)
	if first == -1 || last <= first {
		return ""
	}
	return text[first : last+1]
}

// ExtractRaw recovers the JSON document embedded in a model completion.
// Each stage feeds the next, so the span search runs on fence-stripped text.
func ExtractRaw(text string) (json.RawMessage, error) {
	candidate := text
	if strings.TrimSpace(candidate) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrNoJSON)
	}
	for _, stage := range extractStages {
		candidate = stage(candidate)
		if candidate != "" && json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, ErrNoJSON
}

// ExtractJSON recovers and decodes the JSON value embedded in text.
func ExtractJSON(text string) (any, error) {
	raw, err := ExtractRaw(text)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return v, nil
}
