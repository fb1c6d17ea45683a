package domain

import (
	"fmt"
	"time"
)

// DefaultLLMModel is recorded in metadata when the caller names no model.
const DefaultLLMModel = "sonar"

// Metadata captures accounting for a single bulletin generation run.
type Metadata struct {
	ArticleCount           int              `json:"article_count" validate:"gte=1,lte=10"`
	CategoriesDistribution map[Category]int `json:"categories_distribution"`
	LLMUsage               LLMUsage         `json:"llm_usage"`
	ProcessingTimeSeconds  float64          `json:"processing_time_seconds" validate:"gte=0"`
	LLMModel               string           `json:"llm_model" validate:"required"`
	WorkflowRunID          string           `json:"workflow_run_id,omitempty"`
}

// NewMetadata validates and builds a Metadata record. An empty model name
// falls back to DefaultLLMModel.
func NewMetadata(articleCount int, distribution map[Category]int, usage LLMUsage, processingSeconds float64, llmModel, workflowRunID string) (Metadata, error) {
	if llmModel == "" {
		llmModel = DefaultLLMModel
	}

	meta := Metadata{
		ArticleCount:           articleCount,
		CategoriesDistribution: distribution,
		LLMUsage:               usage,
		ProcessingTimeSeconds:  processingSeconds,
		LLMModel:               llmModel,
		WorkflowRunID:          workflowRunID,
	}
	if err := checkStruct(meta); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

// Bulletin is the top-level validated document: one region/date/period's
// worth of articles plus metadata. It is produced once per formatting run and
// never mutated afterwards.
type Bulletin struct {
	ID          string    `json:"id" validate:"required"`
	Region      Region    `json:"region" validate:"required,oneof=usa"`
	Date        string    `json:"date" validate:"required,datepattern"`
	Period      Period    `json:"period" validate:"required,oneof=morning evening"`
	GeneratedAt time.Time `json:"generated_at"`
	Version     string    `json:"version" validate:"required"`
	Articles    []Article `json:"articles" validate:"min=5,max=10,dive"`
	Metadata    Metadata  `json:"metadata"`
}

// NewBulletin validates and builds a Bulletin, including the cross-field
// rules: id must equal {region}-{date}-{period} and article IDs must be
// pairwise distinct.
func NewBulletin(id string, region Region, date string, period Period, generatedAt time.Time, version string, articles []Article, metadata Metadata) (Bulletin, error) {
	bulletin := Bulletin{
		ID:          id,
		Region:      region,
		Date:        date,
		Period:      period,
		GeneratedAt: generatedAt,
		Version:     version,
		Articles:    articles,
		Metadata:    metadata,
	}
	if err := checkStruct(bulletin); err != nil {
		return Bulletin{}, err
	}
	return bulletin, nil
}

// BulletinID derives the bulletin identifier, e.g. usa-2025-12-15-morning.
func BulletinID(region Region, date string, period Period) string {
	return fmt.Sprintf("%s-%s-%s", region, date, period)
}

// BulletinWrapper is the transport envelope persisted downstream: an object
// with a single "bulletin" key.
type BulletinWrapper struct {
	Bulletin Bulletin `json:"bulletin"`
}
