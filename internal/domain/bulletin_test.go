package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

func makeArticle(t *testing.T, seq int) Article {
	t.Helper()
	article, err := NewArticle(
		fmt.Sprintf("Test Article Number %d", seq),
		validSummary,
		CategoryPolitics,
		validSource(t),
		[]Citation{validCitation(t)},
		DeriveArticleID(RegionUSA, "2025-12-15", PeriodMorning, seq),
	)
	if err != nil {
		t.Fatalf("NewArticle error: %v", err)
	}
	return article
}

func makeArticles(t *testing.T, n int) []Article {
	t.Helper()
	articles := make([]Article, 0, n)
	for i := 1; i <= n; i++ {
		articles = append(articles, makeArticle(t, i))
	}
	return articles
}

func makeMetadata(t *testing.T, count int) Metadata {
	t.Helper()
	usage, err := NewLLMUsage(100, 200, 300)
	if err != nil {
		t.Fatalf("NewLLMUsage error: %v", err)
	}
	meta, err := NewMetadata(count, map[Category]int{CategoryPolitics: count}, usage, 0.5, "", "")
	if err != nil {
		t.Fatalf("NewMetadata error: %v", err)
	}
	return meta
}

func TestMetadataDefaultsModelName(t *testing.T) {
	t.Parallel()

	meta := makeMetadata(t, 5)
	if meta.LLMModel != "sonar" {
		t.Fatalf("unexpected default model: %s", meta.LLMModel)
	}
	if meta.WorkflowRunID != "" {
		t.Fatalf("expected empty workflow_run_id")
	}
}

func TestMetadataArticleCountBounds(t *testing.T) {
	t.Parallel()

	usage, _ := NewLLMUsage(0, 0, 0)

	_, err := NewMetadata(0, nil, usage, 0, "", "")
	requireValidationField(t, err, "article_count")

	_, err = NewMetadata(11, nil, usage, 0, "", "")
	requireValidationField(t, err, "article_count")
}

func TestMetadataDistributionMustSum(t *testing.T) {
	t.Parallel()

	usage, _ := NewLLMUsage(100, 200, 300)
	_, err := NewMetadata(5, map[Category]int{CategoryPolitics: 3}, usage, 0, "", "")
	requireValidationField(t, err, "categories_distribution")
}

func TestBulletinValidCreation(t *testing.T) {
	t.Parallel()

	articles := makeArticles(t, 5)
	bulletin, err := NewBulletin(
		"usa-2025-12-15-morning",
		RegionUSA,
		"2025-12-15",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		articles,
		makeMetadata(t, 5),
	)
	if err != nil {
		t.Fatalf("NewBulletin error: %v", err)
	}

	if bulletin.ID != "usa-2025-12-15-morning" {
		t.Fatalf("unexpected id: %s", bulletin.ID)
	}
	if bulletin.Region != RegionUSA || bulletin.Period != PeriodMorning {
		t.Fatalf("unexpected region/period: %s/%s", bulletin.Region, bulletin.Period)
	}
}

func TestBulletinIDMustMatchContext(t *testing.T) {
	t.Parallel()

	_, err := NewBulletin(
		"invalid-id-format",
		RegionUSA,
		"2025-12-15",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		makeArticles(t, 5),
		makeMetadata(t, 5),
	)
	requireValidationField(t, err, "id")
}

func TestBulletinEnumsAreClosed(t *testing.T) {
	t.Parallel()

	_, err := NewBulletin(
		"mars-2025-12-15-morning",
		Region("mars"),
		"2025-12-15",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		makeArticles(t, 5),
		makeMetadata(t, 5),
	)
	requireValidationField(t, err, "region")

	_, err = NewBulletin(
		"usa-2025-12-15-noon",
		RegionUSA,
		"2025-12-15",
		Period("noon"),
		time.Now().UTC(),
		"1.0",
		makeArticles(t, 5),
		makeMetadata(t, 5),
	)
	requireValidationField(t, err, "period")
}

func TestBulletinDateFormat(t *testing.T) {
	t.Parallel()

	_, err := NewBulletin(
		"usa-12/15/2025-morning",
		RegionUSA,
		"12/15/2025",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		makeArticles(t, 5),
		makeMetadata(t, 5),
	)
	requireValidationField(t, err, "date")
}

func TestBulletinArticleCountRange(t *testing.T) {
	t.Parallel()

	_, err := NewBulletin(
		"usa-2025-12-15-morning",
		RegionUSA,
		"2025-12-15",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		makeArticles(t, 4),
		makeMetadata(t, 4),
	)
	requireValidationField(t, err, "articles")

	_, err = NewBulletin(
		"usa-2025-12-15-morning",
		RegionUSA,
		"2025-12-15",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		makeArticles(t, 11),
		makeMetadata(t, 10),
	)
	requireValidationField(t, err, "articles")
}

func TestBulletinArticleIDsMustBeUnique(t *testing.T) {
	t.Parallel()

	articles := makeArticles(t, 5)
	articles[1].ArticleID = articles[0].ArticleID

	_, err := NewBulletin(
		"usa-2025-12-15-morning",
		RegionUSA,
		"2025-12-15",
		PeriodMorning,
		time.Now().UTC(),
		"1.0",
		articles,
		makeMetadata(t, 5),
	)
	requireValidationField(t, err, "articles")
}

func TestBulletinWrapperRoundTrip(t *testing.T) {
	t.Parallel()

	generatedAt := time.Date(2025, time.December, 15, 7, 0, 0, 0, time.UTC)
	bulletin, err := NewBulletin(
		"usa-2025-12-15-morning",
		RegionUSA,
		"2025-12-15",
		PeriodMorning,
		generatedAt,
		"1.0",
		makeArticles(t, 5),
		makeMetadata(t, 5),
	)
	if err != nil {
		t.Fatalf("NewBulletin error: %v", err)
	}

	wrapper := BulletinWrapper{Bulletin: bulletin}
	raw, err := json.Marshal(wrapper)
	if err != nil {
		t.Fatalf("marshal wrapper: %v", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if _, ok := envelope["bulletin"]; !ok || len(envelope) != 1 {
		t.Fatalf("expected a single bulletin key, got %d keys", len(envelope))
	}

	var decoded BulletinWrapper
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal wrapper: %v", err)
	}

	if decoded.Bulletin.ID != bulletin.ID {
		t.Fatalf("id changed in round trip: %s", decoded.Bulletin.ID)
	}
	if !decoded.Bulletin.GeneratedAt.Equal(bulletin.GeneratedAt) {
		t.Fatalf("generated_at changed in round trip: %v", decoded.Bulletin.GeneratedAt)
	}
	if len(decoded.Bulletin.Articles) != len(bulletin.Articles) {
		t.Fatalf("article count changed in round trip: %d", len(decoded.Bulletin.Articles))
	}
	for i, article := range decoded.Bulletin.Articles {
		if !reflect.DeepEqual(article, bulletin.Articles[i]) {
			t.Fatalf("article %d changed in round trip", i)
		}
	}
	if decoded.Bulletin.Metadata.LLMUsage != bulletin.Metadata.LLMUsage {
		t.Fatalf("usage changed in round trip")
	}
}

func TestValidationErrorMessageListsEveryRule(t *testing.T) {
	t.Parallel()

	_, err := NewLLMUsage(-1, -2, 5)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(vErr.Violations) < 3 {
		t.Fatalf("expected at least 3 violations, got %d: %v", len(vErr.Violations), vErr.Error())
	}
}
