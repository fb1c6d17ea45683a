package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/formatter"
	"NewsBrief/internal/ports"
)

// PipelineDeps wires all driven adapters into the bulletin workflow.
type PipelineDeps struct {
	Provider      ports.NewsProvider
	Enricher      ports.CitationEnricher
	Repository    ports.BulletinRepository
	Notifier      ports.Notifier
	Formatter     *formatter.Formatter
	Region        domain.Region
	WorkflowRunID string
	Logger        *slog.Logger
}

// Pipeline implements the bulletin-generation workflow: fetch the raw
// response, enrich its citations, format it into a validated bulletin, then
// persist and announce the result.
type Pipeline struct {
	provider      ports.NewsProvider
	enricher      ports.CitationEnricher
	repository    ports.BulletinRepository
	notifier      ports.Notifier
	formatter     *formatter.Formatter
	region        domain.Region
	workflowRunID string
	logger        *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		provider:      deps.Provider,
		enricher:      deps.Enricher,
		repository:    deps.Repository,
		notifier:      deps.Notifier,
		formatter:     deps.Formatter,
		region:        deps.Region,
		workflowRunID: deps.WorkflowRunID,
		logger:        deps.Logger,
	}
}

// ProcessPeriod generates, stores, and announces one bulletin window. An
// empty date means the current UTC calendar date. Windows that already have a
// stored bulletin are skipped.
func (p *Pipeline) ProcessPeriod(ctx context.Context, period domain.Period, date string) error {
	if p.provider == nil || p.formatter == nil {
		return nil
	}

	if date == "" {
		date = time.Now().UTC().Format(time.DateOnly)
	}
	bulletinID := domain.BulletinID(p.region, date, period)

	if p.repository != nil {
		exists, err := p.repository.AlreadyGenerated(ctx, bulletinID)
		if err != nil {
			return fmt.Errorf("check bulletin %s: %w", bulletinID, err)
		}
		if exists {
			p.info("bulletin already generated", "bulletin_id", bulletinID)
			return nil
		}
	}

	response, err := p.provider.FetchNews(ctx, p.region, period)
	if err != nil {
		return fmt.Errorf("fetch news for %s: %w", bulletinID, err)
	}

	if p.enricher != nil {
		response.Citations = p.enricher.Enrich(ctx, response.Citations)
	}

	runID := p.workflowRunID
	if runID == "" {
		runID = uuid.NewString()
	}

	wrapper, err := p.formatter.Format(response, p.region, period, date, runID)
	if err != nil {
		return fmt.Errorf("format bulletin %s: %w", bulletinID, err)
	}

	if p.repository != nil {
		if err := p.repository.SaveBulletin(ctx, *wrapper); err != nil {
			return fmt.Errorf("persist bulletin %s: %w", bulletinID, err)
		}
	}

	p.info("bulletin generated",
		"bulletin_id", wrapper.Bulletin.ID,
		"articles", len(wrapper.Bulletin.Articles),
		"total_tokens", wrapper.Bulletin.Metadata.LLMUsage.TotalTokens)

	if p.notifier == nil {
		return nil
	}

	return p.notifier.PublishBulletin(ctx, buildDigestMessage(wrapper.Bulletin))
}

func buildDigestMessage(bulletin domain.Bulletin) string {
	formatted := fmt.Sprintf("*%s news — %s*\n\n", bulletin.Period, bulletin.Date)
	for _, article := range bulletin.Articles {
		formatted += fmt.Sprintf("- %s [%s]\n%s\n%s\n\n",
			article.Title,
			article.Category,
			article.Summary,
			article.Source.URL)
	}
	return formatted
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
