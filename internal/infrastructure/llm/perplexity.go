package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"NewsBrief/internal/config"
	"NewsBrief/internal/domain"
	"NewsBrief/internal/ports"
	"NewsBrief/internal/retry"
)

// PerplexityClient implements ports.NewsProvider against the Perplexity
// chat-completions API. Requests are rate limited and retried with
// exponential backoff on transient failures.
type PerplexityClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
	limiter      *rate.Limiter
	retrier      *retry.Retrier
	logger       *slog.Logger
}

var _ ports.NewsProvider = (*PerplexityClient)(nil)

// transientError marks failures worth retrying (network faults, 429, 5xx).
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var target *transientError
	return errors.As(err, &target)
}

// NewPerplexityClient builds a client from configuration.
func NewPerplexityClient(cfg config.PerplexityConfig, logger *slog.Logger) *PerplexityClient {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 20
	}

	return &PerplexityClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		retrier: retry.New(retry.Config{
			MaxRetries: cfg.MaxRetries,
			Retryable:  isTransient,
		}, logger),
		logger: logger,
	}
}

// Model reports the configured model name for metadata stamping.
func (c *PerplexityClient) Model() string {
	return c.model
}

// FetchNews asks the model for the region/period news payload and returns the
// opaque content/citations/usage triple the formatting pipeline consumes.
func (c *PerplexityClient) FetchNews(ctx context.Context, region domain.Region, period domain.Period) (ports.NewsResponse, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return ports.NewsResponse{}, fmt.Errorf("perplexity client misconfigured")
	}

	var response ports.NewsResponse
	err := c.retrier.Do(ctx, "FetchNews", func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		fetched, err := c.complete(ctx, userPrompt(region, period))
		if err != nil {
			return err
		}
		response = fetched
		return nil
	})
	if err != nil {
		return ports.NewsResponse{}, err
	}

	return response, nil
}

func userPrompt(region domain.Region, period domain.Period) string {
	return fmt.Sprintf(
		"Generate the %s news bulletin for region %q: 5 to 10 articles as a JSON object "+
			"with an \"articles\" array; each article has title, summary, category and url.",
		period, region)
}

func (c *PerplexityClient) complete(ctx context.Context, prompt string) (ports.NewsResponse, error) {
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": c.systemPrompt},
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return ports.NewsResponse{}, fmt.Errorf("marshal perplexity payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.NewsResponse{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.NewsResponse{}, &transientError{err: fmt.Errorf("perplexity request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		statusErr := fmt.Errorf("perplexity error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return ports.NewsResponse{}, &transientError{err: statusErr}
		}
		return ports.NewsResponse{}, statusErr
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.NewsResponse{}, fmt.Errorf("decode response: %w", err)
	}

	return decoded.toNewsResponse(), nil
}

// completionResponse mirrors the slice of the chat-completions reply this
// pipeline cares about. Citations arrive either as bare URL strings or as
// search_results objects depending on API version.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations     []string `json:"citations"`
	SearchResults []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"search_results"`
	Usage ports.UsagePayload `json:"usage"`
}

func (r completionResponse) toNewsResponse() ports.NewsResponse {
	response := ports.NewsResponse{Usage: r.Usage}

	if len(r.Choices) > 0 {
		response.Content = r.Choices[0].Message.Content
	}

	for _, result := range r.SearchResults {
		response.Citations = append(response.Citations, ports.CitationPayload{
			Title:     result.Title,
			URL:       result.URL,
			Publisher: domain.HostOf(result.URL),
		})
	}
	if len(response.Citations) == 0 {
		for _, rawURL := range r.Citations {
			response.Citations = append(response.Citations, ports.CitationPayload{
				URL:       rawURL,
				Publisher: domain.HostOf(rawURL),
			})
		}
	}

	return response
}
