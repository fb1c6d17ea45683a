// Package enrich fills in missing citation titles and publishers by fetching
// the cited page. Perplexity frequently returns citations as bare URLs; the
// formatting core requires titled citations, so the pipeline runs this step
// before formatting. Every failure degrades to a deterministic fallback
// derived from the URL host.
package enrich

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
)

const maxTitleLength = 150

// PageEnricher resolves citation metadata from the cited pages themselves.
type PageEnricher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.CitationEnricher = (*PageEnricher)(nil)

// NewPageEnricher wires an HTTP client; nil means a default with a short
// timeout so a slow citation host cannot stall the bulletin run.
func NewPageEnricher(client *http.Client, logger *slog.Logger) *PageEnricher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PageEnricher{client: client, logger: logger}
}

// Enrich returns a copy of the citation pool with empty titles and publishers
// filled in. Citations that already carry both fields are passed through
// untouched.
func (e *PageEnricher) Enrich(ctx context.Context, citations []ports.CitationPayload) []ports.CitationPayload {
	enriched := make([]ports.CitationPayload, len(citations))
	for i, citation := range citations {
		enriched[i] = e.enrichOne(ctx, citation)
	}
	return enriched
}

func (e *PageEnricher) enrichOne(ctx context.Context, citation ports.CitationPayload) ports.CitationPayload {
	if citation.Title != "" && citation.Publisher != "" {
		return citation
	}

	host := domain.HostOf(citation.URL)
	title, siteName := e.fetchPageMeta(ctx, citation.URL)

	if citation.Title == "" {
		citation.Title = firstNonEmpty(title, host)
	}
	if citation.Publisher == "" {
		citation.Publisher = firstNonEmpty(siteName, host)
	}

	return citation
}

// fetchPageMeta pulls the document <title> and og:site_name. Any error leaves
// both empty; the caller falls back to the host.
func (e *PageEnricher) fetchPageMeta(ctx context.Context, rawURL string) (title, siteName string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", ""
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.debug("citation fetch failed", "url", rawURL, "error", err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.debug("citation fetch rejected", "url", rawURL, "status", resp.Status)
		return "", ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.debug("citation parse failed", "url", rawURL, "error", err)
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if runes := []rune(title); len(runes) > maxTitleLength {
		title = string(runes[:maxTitleLength])
	}

	siteName, _ = doc.Find(`meta[property="og:site_name"]`).First().Attr("content")
	siteName = strings.TrimSpace(siteName)

	return title, siteName
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func (e *PageEnricher) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
