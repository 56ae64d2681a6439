package domain

import "strings"

// Category is the fixed news section enumeration.
type Category string

const (
	CategoryPolitics Category = "POLITICS"
	CategoryEconomy  Category = "ECONOMY"
	CategorySociety  Category = "SOCIETY"
	CategoryCulture  Category = "CULTURE"
	CategoryWorld    Category = "WORLD"
	CategoryIT       Category = "IT"
)

// Categories lists every valid category in storage order.
var Categories = []Category{
	CategoryPolitics,
	CategoryEconomy,
	CategorySociety,
	CategoryCulture,
	CategoryWorld,
	CategoryIT,
}

var localizedCategories = map[string]Category{
	"정치":    CategoryPolitics,
	"경제":    CategoryEconomy,
	"사회":    CategorySociety,
	"생활/문화": CategoryCulture,
	"세계":    CategoryWorld,
	"IT/과학": CategoryIT,
}

var sectionCategories = map[string]Category{
	"100": CategoryPolitics,
	"101": CategoryEconomy,
	"102": CategorySociety,
	"103": CategoryCulture,
	"104": CategoryWorld,
	"105": CategoryIT,
}

// Valid reports whether c is a member of the enumeration.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory maps any label onto the enumeration. It never fails:
// unknown or empty labels fall back to SOCIETY.
func NormalizeCategory(raw string) Category {
	label := strings.TrimSpace(raw)
	if label == "" {
		return CategorySociety
	}

	if cat, ok := localizedCategories[label]; ok {
		return cat
	}

	cat := Category(strings.ToUpper(label))
	if !cat.Valid() {
		return CategorySociety
	}
	return cat
}

// SectionCategory resolves a numeric section code to its category label.
// Unknown hints are returned unchanged so NormalizeCategory can still match them.
func SectionCategory(section string) string {
	if cat, ok := sectionCategories[strings.TrimSpace(section)]; ok {
		return string(cat)
	}
	return section
}
