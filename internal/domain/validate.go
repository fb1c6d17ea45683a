package domain

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	articleIDPattern = regexp.MustCompile(`^[a-z_]+-\d{4}-\d{2}-\d{2}-[a-z]+-\d{3}$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report violations under JSON field names so errors match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("minwords", func(fl validator.FieldLevel) bool {
		min := 0
		if _, err := fmt.Sscanf(fl.Param(), "%d", &min); err != nil {
			return false
		}
		return len(strings.Fields(fl.Field().String())) >= min
	})

	_ = v.RegisterValidation("maxwords", func(fl validator.FieldLevel) bool {
		max := 0
		if _, err := fmt.Sscanf(fl.Param(), "%d", &max); err != nil {
			return false
		}
		return len(strings.Fields(fl.Field().String())) <= max
	})

	_ = v.RegisterValidation("article_id", func(fl validator.FieldLevel) bool {
		return articleIDPattern.MatchString(fl.Field().String())
	})

	// Pattern check only; the calendar is upstream's responsibility.
	_ = v.RegisterValidation("datepattern", func(fl validator.FieldLevel) bool {
		return datePattern.MatchString(fl.Field().String())
	})

	v.RegisterStructValidation(validateLLMUsage, LLMUsage{})
	v.RegisterStructValidation(validateMetadata, Metadata{})
	v.RegisterStructValidation(validateBulletin, Bulletin{})

	return v
}

func validateLLMUsage(sl validator.StructLevel) {
	usage := sl.Current().Interface().(LLMUsage)
	if usage.TotalTokens != usage.PromptTokens+usage.CompletionTokens {
		sl.ReportError(usage.TotalTokens, "total_tokens", "TotalTokens", "tokensum", "")
	}
}

func validateMetadata(sl validator.StructLevel) {
	meta := sl.Current().Interface().(Metadata)
	if len(meta.CategoriesDistribution) == 0 {
		return
	}

	sum := 0
	for _, count := range meta.CategoriesDistribution {
		sum += count
	}
	if sum != meta.ArticleCount {
		sl.ReportError(meta.CategoriesDistribution, "categories_distribution", "CategoriesDistribution", "distribution_sum", "")
	}
}

func validateBulletin(sl validator.StructLevel) {
	bulletin := sl.Current().Interface().(Bulletin)

	if want := BulletinID(bulletin.Region, bulletin.Date, bulletin.Period); bulletin.ID != want {
		sl.ReportError(bulletin.ID, "id", "ID", "id_format", want)
	}

	seen := make(map[string]bool, len(bulletin.Articles))
	for _, article := range bulletin.Articles {
		if seen[article.ArticleID] {
			sl.ReportError(bulletin.Articles, "articles", "Articles", "unique_article_ids", article.ArticleID)
			return
		}
		seen[article.ArticleID] = true
	}
}

// Violation names a single broken rule on a single field.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError aggregates every rule violated during construction,
// not just the first, so callers can assert on the complete set.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Fields lists the offending field names in violation order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// HasField reports whether any violation names the given field.
func (e *ValidationError) HasField(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

func checkStruct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	violations := make([]Violation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: violationMessage(fe),
		})
	}
	return &ValidationError{Violations: violations}
}

func violationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s characters or items", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must have at most %s characters or items", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "minwords":
		return fmt.Sprintf("%s must contain at least %s words", field, fe.Param())
	case "maxwords":
		return fmt.Sprintf("%s must contain at most %s words", field, fe.Param())
	case "article_id":
		return fmt.Sprintf("%s must match {region}-{date}-{period}-{sequence}", field)
	case "datepattern":
		return fmt.Sprintf("%s must match YYYY-MM-DD", field)
	case "tokensum":
		return fmt.Sprintf("%s must equal prompt_tokens + completion_tokens", field)
	case "distribution_sum":
		return fmt.Sprintf("%s values must sum to article_count", field)
	case "id_format":
		return fmt.Sprintf("%s must equal %s", field, fe.Param())
	case "unique_article_ids":
		return fmt.Sprintf("%s contain duplicate article_id %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
