package advisor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Insight is one educational note about a symbol or the whole portfolio.
type Insight struct {
	Symbol  string `json:"symbol"`
	Verdict string `json:"verdict"`
	Note    string `json:"note"`
}

var thinkTagRegex = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ParseInsights parses the model reply into insights. Handles reasoning
// tags, markdown code fences, and JSON embedded in surrounding prose.
func ParseInsights(text string) ([]Insight, error) {
	cleaned := strings.TrimSpace(thinkTagRegex.ReplaceAllString(text, ""))

	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" || cleaned == "[]" {
		return nil, nil
	}

	var insights []Insight
	if err := json.Unmarshal([]byte(cleaned), &insights); err == nil {
		return insights, nil
	}

	var single Insight
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil {
		return []Insight{single}, nil
	}

	// JSON buried in prose
	jsonStart := strings.Index(cleaned, "[")
	jsonEnd := strings.LastIndex(cleaned, "]")
	if jsonStart >= 0 && jsonEnd > jsonStart {
		substr := cleaned[jsonStart : jsonEnd+1]
		if err := json.Unmarshal([]byte(substr), &insights); err == nil {
			return insights, nil
		}
	}

	return nil, fmt.Errorf("failed to parse advisor response as JSON: %.200s", cleaned)
}
