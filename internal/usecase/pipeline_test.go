package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/formatter"
	"NewsBrief/internal/ports"
)

const testSummary = "This is a test summary with sufficient words here to meet the twenty word minimum requirement for validation purposes in this comprehensive test case."

type stubProvider struct {
	response ports.NewsResponse
	err      error
	calls    int
}

func (s *stubProvider) FetchNews(ctx context.Context, region domain.Region, period domain.Period) (ports.NewsResponse, error) {
	s.calls++
	return s.response, s.err
}

type stubEnricher struct {
	calls int
}

func (s *stubEnricher) Enrich(ctx context.Context, citations []ports.CitationPayload) []ports.CitationPayload {
	s.calls++
	enriched := make([]ports.CitationPayload, len(citations))
	for i, citation := range citations {
		if citation.Title == "" {
			citation.Title = "Enriched Title"
		}
		if citation.Publisher == "" {
			citation.Publisher = "Enriched Pub"
		}
		enriched[i] = citation
	}
	return enriched
}

type stubRepository struct {
	existing map[string]bool
	saved    []domain.BulletinWrapper
	saveErr  error
}

func (s *stubRepository) AlreadyGenerated(ctx context.Context, bulletinID string) (bool, error) {
	return s.existing[bulletinID], nil
}

func (s *stubRepository) SaveBulletin(ctx context.Context, wrapper domain.BulletinWrapper) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, wrapper)
	return nil
}

type stubNotifier struct {
	messages []string
}

func (s *stubNotifier) PublishBulletin(ctx context.Context, message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func stubResponse(t *testing.T) ports.NewsResponse {
	t.Helper()

	raws := make([]map[string]any, 0, 5)
	for i := 1; i <= 5; i++ {
		raws = append(raws, map[string]any{
			"title":    fmt.Sprintf("Test Article Number %d", i),
			"summary":  testSummary,
			"category": "politics",
			"url":      fmt.Sprintf("https://news.example.com/%d", i),
		})
	}
	content, err := json.Marshal(map[string]any{"articles": raws})
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}

	return ports.NewsResponse{
		Content: string(content),
		Citations: []ports.CitationPayload{
			{URL: "https://www.reuters.com/1"},
			{URL: "https://apnews.com/2"},
			{URL: "https://www.bbc.com/3"},
			{URL: "https://www.nytimes.com/4"},
			{URL: "https://www.wsj.com/5"},
		},
		Usage: ports.UsagePayload{PromptTokens: 500, CompletionTokens: 800, TotalTokens: 1300},
	}
}

func testPipeline(t *testing.T, provider *stubProvider) (*Pipeline, *stubRepository, *stubNotifier, *stubEnricher) {
	t.Helper()

	repository := &stubRepository{existing: map[string]bool{}}
	notifier := &stubNotifier{}
	enricher := &stubEnricher{}

	pipeline := NewPipeline(PipelineDeps{
		Provider:      provider,
		Enricher:      enricher,
		Repository:    repository,
		Notifier:      notifier,
		Formatter:     formatter.New("sonar", "1.0"),
		Region:        domain.RegionUSA,
		WorkflowRunID: "run-42",
	})
	return pipeline, repository, notifier, enricher
}

func TestProcessPeriodGeneratesStoresAndAnnounces(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{response: stubResponse(t)}
	pipeline, repository, notifier, enricher := testPipeline(t, provider)

	if err := pipeline.ProcessPeriod(context.Background(), domain.PeriodMorning, "2025-12-15"); err != nil {
		t.Fatalf("ProcessPeriod error: %v", err)
	}

	if provider.calls != 1 || enricher.calls != 1 {
		t.Fatalf("expected one fetch and one enrich, got %d/%d", provider.calls, enricher.calls)
	}
	if len(repository.saved) != 1 {
		t.Fatalf("expected 1 saved bulletin, got %d", len(repository.saved))
	}

	bulletin := repository.saved[0].Bulletin
	if bulletin.ID != "usa-2025-12-15-morning" {
		t.Fatalf("unexpected bulletin id: %s", bulletin.ID)
	}
	if bulletin.Metadata.WorkflowRunID != "run-42" {
		t.Fatalf("unexpected workflow run id: %s", bulletin.Metadata.WorkflowRunID)
	}
	if bulletin.Articles[0].Citations[0].Title != "Enriched Title" {
		t.Fatalf("expected enriched citation, got %+v", bulletin.Articles[0].Citations[0])
	}

	if len(notifier.messages) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.messages))
	}
	if !strings.Contains(notifier.messages[0], "Test Article Number 1") {
		t.Fatalf("digest missing article title: %q", notifier.messages[0])
	}
}

func TestProcessPeriodSkipsAlreadyGeneratedWindow(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{response: stubResponse(t)}
	pipeline, repository, notifier, _ := testPipeline(t, provider)
	repository.existing["usa-2025-12-15-morning"] = true

	if err := pipeline.ProcessPeriod(context.Background(), domain.PeriodMorning, "2025-12-15"); err != nil {
		t.Fatalf("ProcessPeriod error: %v", err)
	}
	if provider.calls != 0 {
		t.Fatalf("provider must not be called for an existing window, got %d calls", provider.calls)
	}
	if len(repository.saved) != 0 || len(notifier.messages) != 0 {
		t.Fatalf("existing window must not be re-saved or announced")
	}
}

func TestProcessPeriodPropagatesFetchFailure(t *testing.T) {
	t.Parallel()

	cause := errors.New("upstream down")
	provider := &stubProvider{err: cause}
	pipeline, repository, _, _ := testPipeline(t, provider)

	err := pipeline.ProcessPeriod(context.Background(), domain.PeriodEvening, "2025-12-15")
	if !errors.Is(err, cause) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if len(repository.saved) != 0 {
		t.Fatalf("nothing must be saved on fetch failure")
	}
}

func TestProcessPeriodPropagatesFormatFailure(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{response: ports.NewsResponse{Content: "not json at all"}}
	pipeline, repository, notifier, _ := testPipeline(t, provider)

	err := pipeline.ProcessPeriod(context.Background(), domain.PeriodMorning, "2025-12-15")
	if err == nil {
		t.Fatalf("expected formatting failure")
	}
	if len(repository.saved) != 0 || len(notifier.messages) != 0 {
		t.Fatalf("invalid bulletin must not be saved or announced")
	}
}

func TestProcessPeriodPropagatesSaveFailure(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{response: stubResponse(t)}
	pipeline, repository, notifier, _ := testPipeline(t, provider)
	repository.saveErr = errors.New("database down")

	err := pipeline.ProcessPeriod(context.Background(), domain.PeriodMorning, "2025-12-15")
	if !errors.Is(err, repository.saveErr) {
		t.Fatalf("expected save failure, got %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("unsaved bulletin must not be announced")
	}
}

func TestProcessPeriodAssignsRunIDWhenUnset(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{response: stubResponse(t)}
	repository := &stubRepository{existing: map[string]bool{}}
	pipeline := NewPipeline(PipelineDeps{
		Provider:   provider,
		Repository: repository,
		Formatter:  formatter.New("sonar", "1.0"),
		Region:     domain.RegionUSA,
	})

	if err := pipeline.ProcessPeriod(context.Background(), domain.PeriodMorning, "2025-12-15"); err != nil {
		t.Fatalf("ProcessPeriod error: %v", err)
	}
	if repository.saved[0].Bulletin.Metadata.WorkflowRunID == "" {
		t.Fatalf("expected generated workflow run id")
	}
}
