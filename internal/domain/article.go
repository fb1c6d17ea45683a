// Package domain defines the validated bulletin object model. Every type is
// constructed through a New* function that either returns a fully valid value
// or a *ValidationError enumerating all broken rules; no partially valid
// instance can exist.
package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Source identifies the outlet an article was reported by.
type Source struct {
	Name        string     `json:"name" validate:"required"`
	URL         string     `json:"url" validate:"required,http_url"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// NewSource validates and builds a Source.
func NewSource(name, rawURL string, publishedAt *time.Time) (Source, error) {
	source := Source{
		Name:        name,
		URL:         rawURL,
		PublishedAt: publishedAt,
	}
	if err := checkStruct(source); err != nil {
		return Source{}, err
	}
	return source, nil
}

// ParsePublishedAt converts a textual timestamp into an absolute instant.
// The text must carry an explicit offset (RFC 3339).
func ParsePublishedAt(raw string) (*time.Time, error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("parse published_at: %w", err)
	}
	return &ts, nil
}

// Citation references material backing an article's claims.
type Citation struct {
	Title     string `json:"title" validate:"required,min=1,max=150"`
	URL       string `json:"url" validate:"required,url"`
	Publisher string `json:"publisher" validate:"required,min=1,max=100"`
}

// NewCitation validates and builds a Citation.
func NewCitation(title, rawURL, publisher string) (Citation, error) {
	citation := Citation{
		Title:     title,
		URL:       rawURL,
		Publisher: publisher,
	}
	if err := checkStruct(citation); err != nil {
		return Citation{}, err
	}
	return citation, nil
}

// LLMUsage records token accounting reported by the upstream model.
// total_tokens must equal prompt_tokens + completion_tokens; a mismatch is a
// validation error, never a silent correction.
type LLMUsage struct {
	PromptTokens     int `json:"prompt_tokens" validate:"gte=0"`
	CompletionTokens int `json:"completion_tokens" validate:"gte=0"`
	TotalTokens      int `json:"total_tokens" validate:"gte=0"`
}

// NewLLMUsage validates and builds an LLMUsage.
func NewLLMUsage(promptTokens, completionTokens, totalTokens int) (LLMUsage, error) {
	usage := LLMUsage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
	}
	if err := checkStruct(usage); err != nil {
		return LLMUsage{}, err
	}
	return usage, nil
}

// Article is a single validated news item inside a bulletin.
type Article struct {
	Title     string     `json:"title" validate:"required,min=10,max=120"`
	Summary   string     `json:"summary" validate:"required,min=40,max=500,minwords=20,maxwords=100"`
	Category  Category   `json:"category" validate:"required,oneof=politics economy technology sports health world"`
	Source    Source     `json:"source"`
	Citations []Citation `json:"citations" validate:"min=1,max=3,dive"`
	ArticleID string     `json:"article_id" validate:"required,article_id"`
}

// NewArticle validates and builds an Article.
func NewArticle(title, summary string, category Category, source Source, citations []Citation, articleID string) (Article, error) {
	article := Article{
		Title:     title,
		Summary:   summary,
		Category:  category,
		Source:    source,
		Citations: citations,
		ArticleID: articleID,
	}
	if err := checkStruct(article); err != nil {
		return Article{}, err
	}
	return article, nil
}

// DeriveArticleID builds the identifier for the i-th article (1-based) of a
// bulletin, e.g. usa-2025-12-15-morning-001.
func DeriveArticleID(region Region, date string, period Period, seq int) string {
	return fmt.Sprintf("%s-%s-%s-%03d", region, date, period, seq)
}

// HostOf extracts the hostname of a URL for publisher/name fallbacks.
// It returns an empty string when the URL cannot be parsed.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
