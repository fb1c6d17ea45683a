package domain

// Category is the closed set of news categories a bulletin article may carry.
type Category string

const (
	CategoryPolitics   Category = "politics"
	CategoryEconomy    Category = "economy"
	CategoryTechnology Category = "technology"
	CategorySports     Category = "sports"
	CategoryHealth     Category = "health"
	CategoryWorld      Category = "world"
)

// DefaultCategory is assigned when upstream metadata names no known category.
const DefaultCategory = CategoryWorld

var knownCategories = map[string]Category{
	"politics":   CategoryPolitics,
	"economy":    CategoryEconomy,
	"technology": CategoryTechnology,
	"sports":     CategorySports,
	"health":     CategoryHealth,
	"world":      CategoryWorld,
}

// ParseCategory maps a raw category string onto the enumeration.
// The match is case-sensitive; any miss reports ok=false so the caller
// can apply its fallback policy instead of failing the run.
func ParseCategory(raw string) (Category, bool) {
	cat, ok := knownCategories[raw]
	return cat, ok
}

// Region enumerates the geographies bulletins are generated for.
type Region string

const RegionUSA Region = "usa"

// ParseRegion maps a raw region string onto the enumeration.
func ParseRegion(raw string) (Region, bool) {
	if raw == string(RegionUSA) {
		return RegionUSA, true
	}
	return "", false
}

// Period enumerates the publication windows within a day.
type Period string

const (
	PeriodMorning Period = "morning"
	PeriodEvening Period = "evening"
)

// ParsePeriod maps a raw period string onto the enumeration.
func ParsePeriod(raw string) (Period, bool) {
	switch raw {
	case string(PeriodMorning):
		return PeriodMorning, true
	case string(PeriodEvening):
		return PeriodEvening, true
	}
	return "", false
}
