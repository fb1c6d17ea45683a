package ports

import (
	"context"

	"NewsBrief/internal/domain"
)

// CitationPayload is a raw, untrusted citation mapping from the upstream API.
// Fields other than URL are frequently empty until enrichment runs.
type CitationPayload struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Publisher string `json:"publisher"`
}

// UsagePayload is the raw token-usage mapping; absent fields stay zero.
type UsagePayload struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewsResponse is the opaque upstream payload consumed by the formatting
// pipeline: a text blob nominally containing article JSON, a shared citation
// pool, and a usage record.
type NewsResponse struct {
	Content   string            `json:"content"`
	Citations []CitationPayload `json:"citations"`
	Usage     UsagePayload      `json:"usage"`
}

// NewsProvider fetches a raw news payload for one region/period window.
type NewsProvider interface {
	FetchNews(ctx context.Context, region domain.Region, period domain.Period) (NewsResponse, error)
}

// CitationEnricher fills missing titles/publishers on raw citations.
type CitationEnricher interface {
	Enrich(ctx context.Context, citations []CitationPayload) []CitationPayload
}

// BulletinRepository persists generated bulletins for downstream consumers.
type BulletinRepository interface {
	AlreadyGenerated(ctx context.Context, bulletinID string) (bool, error)
	SaveBulletin(ctx context.Context, wrapper domain.BulletinWrapper) error
}

// Notifier streams bulletin digests to Telegram or other channels.
type Notifier interface {
	PublishBulletin(ctx context.Context, digest string) error
}

// Scheduler controls when bulletin runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(trigger ScheduledRun)) error
	Stop(ctx context.Context) error
}

// ScheduledRun names the window a scheduler tick stands for.
type ScheduledRun struct {
	Period domain.Period
	Date   string
}
