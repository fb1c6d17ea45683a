// Package formatter turns a raw upstream news response into a validated
// bulletin wrapper. It orchestrates extraction and normalization and performs
// no retries, repairs, or I/O; failures propagate by kind so callers can tell
// empty input from malformed input from validation errors.
package formatter

import (
	"time"

	"NewsBrief/internal/domain"
	"NewsBrief/internal/extractor"
	"NewsBrief/internal/normalizer"
	"NewsBrief/internal/ports"
)

// DefaultVersion is stamped on bulletins unless configured otherwise.
const DefaultVersion = "1.0"

// Formatter assembles bulletins. Model name and version are explicit
// configuration so formatting stays a pure function of its inputs.
type Formatter struct {
	llmModel string
	version  string
}

// New builds a Formatter. Empty arguments fall back to the domain default
// model name and DefaultVersion.
func New(llmModel, version string) *Formatter {
	if version == "" {
		version = DefaultVersion
	}
	return &Formatter{llmModel: llmModel, version: version}
}

// Format converts the response into a BulletinWrapper for the given
// region/period. An empty date means the current UTC calendar date.
// Formatting the same response with the same context twice yields identical
// bulletin and article IDs.
func (f *Formatter) Format(response ports.NewsResponse, region domain.Region, period domain.Period, date, workflowRunID string) (*domain.BulletinWrapper, error) {
	start := time.Now()

	raws, err := extractor.ExtractArticles(response.Content)
	if err != nil {
		return nil, err
	}

	norm := normalizer.New(region, period, date)

	articles, err := norm.Articles(raws, response.Citations)
	if err != nil {
		return nil, err
	}

	usage, err := norm.Usage(response.Usage)
	if err != nil {
		return nil, err
	}

	metadata, err := domain.NewMetadata(
		len(articles),
		normalizer.Distribution(articles),
		usage,
		time.Since(start).Seconds(),
		f.llmModel,
		workflowRunID,
	)
	if err != nil {
		return nil, err
	}

	bulletin, err := domain.NewBulletin(
		domain.BulletinID(region, norm.Date(), period),
		region,
		norm.Date(),
		period,
		time.Now().UTC(),
		f.version,
		articles,
		metadata,
	)
	if err != nil {
		return nil, err
	}

	return &domain.BulletinWrapper{Bulletin: bulletin}, nil
}
