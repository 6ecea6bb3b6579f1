package registration

import "strings"

// Category names of the seeded categories table.
const (
	CategoryNational = "National"
	CategoryState    = "State"
	CategoryDistrict = "District"
	CategorySchool   = "School"
	CategoryOthers   = "Others"
)

// Categories lists every category name in rank order.
var Categories = []string{CategoryNational, CategoryState, CategoryDistrict, CategorySchool, CategoryOthers}

// categoryKeywords is checked in order; the first keyword contained in the
// achievement text wins.
var categoryKeywords = []struct {
	keyword  string
	category string
}{
	{"national", CategoryNational},
	{"state", CategoryState},
	{"district", CategoryDistrict},
	{"schools", CategorySchool},
	{"school", CategorySchool},
}

// Achievement texts that mean "no ranked achievement".
var othersText = map[string]bool{
	"":           true,
	"none":       true,
	"nil":        true,
	"university": true,
}

// ResolveCategory maps a free-text achievement to a category name. Anything
// that matches no keyword is Others.
func ResolveCategory(achievement string) string {
	text := strings.ToLower(strings.TrimSpace(achievement))
	if othersText[text] {
		return CategoryOthers
	}
	for _, kw := range categoryKeywords {
		if strings.Contains(text, kw.keyword) {
			return kw.category
		}
	}
	return CategoryOthers
}
