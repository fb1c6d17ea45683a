// Package extractor isolates the JSON article payload embedded in a raw LLM
// text response, which may arrive wrapped in prose or a markdown code fence.
package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyContent reports a blank or whitespace-only response body. Callers
// match on this to tell "nothing came back" from "garbage came back".
var ErrEmptyContent = errors.New("Empty content in API response")

// ErrMalformedJSON reports a non-empty body that does not parse as JSON.
var ErrMalformedJSON = errors.New("failed to parse JSON from content")

// fencedBlock matches a single markdown code fence with an optional language
// tag, capturing the body.
var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\n(.*?)\n\\s*```")

// ExtractArticles parses raw response text into loosely typed article
// mappings. It accepts either a top-level JSON array of articles or an object
// carrying an "articles" array; any other top-level shape yields zero
// articles and leaves the complaint to downstream validation. Source order is
// preserved and nothing is deduplicated.
func ExtractArticles(content string) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrEmptyContent
	}

	if match := fencedBlock.FindStringSubmatch(trimmed); match != nil {
		trimmed = strings.TrimSpace(match[1])
	}

	var payload any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	switch typed := payload.(type) {
	case []any:
		return toArticleMaps(typed), nil
	case map[string]any:
		if list, ok := typed["articles"].([]any); ok {
			return toArticleMaps(list), nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func toArticleMaps(items []any) []map[string]any {
	articles := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if mapping, ok := item.(map[string]any); ok {
			articles = append(articles, mapping)
		}
	}
	return articles
}
