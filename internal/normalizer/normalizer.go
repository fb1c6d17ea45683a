// Package normalizer maps raw, possibly malformed article data onto valid
// domain instances. Non-authoritative metadata (unknown categories, missing
// citations, absent sources) is repaired through deterministic fallbacks;
// authored content bounds are never repaired and fail the whole run.
package normalizer

import (
	"fmt"
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

const (
	defaultCitationTitle = "Original Source"
	defaultSourceName    = "Perplexity"
	defaultSourceURL     = "https://www.perplexity.ai"
	maxCitationsPer      = 3
)

// Normalizer carries the region/period/date context shared by every article
// of one bulletin run.
type Normalizer struct {
	region domain.Region
	period domain.Period
	date   string
}

// New builds a Normalizer. An empty date defaults to the current UTC
// calendar date.
func New(region domain.Region, period domain.Period, date string) *Normalizer {
	if date == "" {
		date = time.Now().UTC().Format(time.DateOnly)
	}
	return &Normalizer{region: region, period: period, date: date}
}

// Date reports the resolved bulletin date.
func (n *Normalizer) Date() string {
	return n.date
}

// Articles converts raw article mappings plus the shared citation pool into
// validated domain articles, in source order. Identifiers are derived from
// the 1-based position, so the same input always yields the same IDs.
func (n *Normalizer) Articles(raws []map[string]any, pool []ports.CitationPayload) ([]domain.Article, error) {
	articles := make([]domain.Article, 0, len(raws))

	for i, raw := range raws {
		articleID := domain.DeriveArticleID(n.region, n.date, n.period, i+1)

		category := domain.DefaultCategory
		if mapped, ok := domain.ParseCategory(stringField(raw, "category")); ok {
			category = mapped
		}

		assigned := assignCitations(pool, i, len(raws))
		source, err := n.buildSource(raw, assigned)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i+1, err)
		}

		citations, err := buildCitations(assigned, source)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i+1, err)
		}

		article, err := domain.NewArticle(
			stringField(raw, "title"),
			stringField(raw, "summary"),
			category,
			source,
			citations,
			articleID,
		)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i+1, err)
		}

		articles = append(articles, article)
	}

	return articles, nil
}

// Usage converts the raw usage mapping; absent fields are zero and the
// total-tokens invariant still applies.
func (n *Normalizer) Usage(raw ports.UsagePayload) (domain.LLMUsage, error) {
	return domain.NewLLMUsage(raw.PromptTokens, raw.CompletionTokens, raw.TotalTokens)
}

// Distribution counts the final, already-defaulted category of each article.
func Distribution(articles []domain.Article) map[domain.Category]int {
	distribution := make(map[domain.Category]int)
	for _, article := range articles {
		distribution[article.Category]++
	}
	return distribution
}

// assignCitations partitions the shared pool across articles: each article
// receives k = clamp(pool/articles, 1, 3) citations taken contiguously
// starting at (index*k) mod pool, wrapping when the pool is smaller than the
// article list. Every article ends with 1..3 citations whenever the pool is
// non-empty; an empty pool returns nil and a default citation is synthesized
// later.
func assignCitations(pool []ports.CitationPayload, index, articleCount int) []ports.CitationPayload {
	if len(pool) == 0 || articleCount == 0 {
		return nil
	}

	per := len(pool) / articleCount
	if per < 1 {
		per = 1
	}
	if per > maxCitationsPer {
		per = maxCitationsPer
	}

	assigned := make([]ports.CitationPayload, 0, per)
	start := (index * per) % len(pool)
	for j := 0; j < per; j++ {
		assigned = append(assigned, pool[(start+j)%len(pool)])
	}
	return assigned
}

func buildCitations(assigned []ports.CitationPayload, source domain.Source) ([]domain.Citation, error) {
	if len(assigned) == 0 {
		fallback, err := domain.NewCitation(defaultCitationTitle, source.URL, source.Name)
		if err != nil {
			return nil, err
		}
		return []domain.Citation{fallback}, nil
	}

	citations := make([]domain.Citation, 0, len(assigned))
	for _, payload := range assigned {
		title := payload.Title
		if title == "" {
			title = defaultCitationTitle
		}
		publisher := payload.Publisher
		if publisher == "" {
			publisher = domain.HostOf(payload.URL)
		}
		if publisher == "" {
			publisher = source.Name
		}

		citation, err := domain.NewCitation(title, payload.URL, publisher)
		if err != nil {
			return nil, err
		}
		citations = append(citations, citation)
	}
	return citations, nil
}

// buildSource constructs the article source from raw fields, falling back to
// the first assigned citation and finally to fixed defaults. The policy is a
// pure function of the raw article and its citation slice.
func (n *Normalizer) buildSource(raw map[string]any, assigned []ports.CitationPayload) (domain.Source, error) {
	sourceURL := stringField(raw, "url")
	if sourceURL == "" {
		sourceURL = stringField(raw, "source_url")
	}

	name := ""
	switch typed := raw["source"].(type) {
	case string:
		name = typed
	case map[string]any:
		name = stringField(typed, "name")
		if sourceURL == "" {
			sourceURL = stringField(typed, "url")
		}
	}

	if sourceURL == "" && len(assigned) > 0 {
		sourceURL = assigned[0].URL
	}
	if sourceURL == "" {
		sourceURL = defaultSourceURL
	}

	if name == "" {
		name = domain.HostOf(sourceURL)
	}
	if name == "" {
		name = defaultSourceName
	}

	var publishedAt *time.Time
	if rawTS := stringField(raw, "published_at"); rawTS != "" {
		// Unparseable timestamps are non-authoritative metadata; drop them
		// rather than aborting the run.
		if ts, err := domain.ParsePublishedAt(rawTS); err == nil {
			publishedAt = ts
		}
	}

	return domain.NewSource(name, sourceURL, publishedAt)
}

func stringField(raw map[string]any, key string) string {
	if value, ok := raw[key].(string); ok {
		return value
	}
	return ""
}
