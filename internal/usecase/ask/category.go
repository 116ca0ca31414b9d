package ask

import "strings"

// CategoryDetector is a lightweight keyword classifier mapping a query to
// an optional category tag used as a search filter hint. No match means no
// filter (broadest search).
type CategoryDetector struct {
	keywords map[string][]string
}

// DefaultCategoryDetector covers the categories of the current corpus.
func DefaultCategoryDetector() *CategoryDetector {
	return &CategoryDetector{
		keywords: map[string][]string{
			"automotive": {
				"car", "vehicle", "engine", "speed", "safety", "luxury",
				"suv", "sedan", "wrench", "soldering", "pneumatic",
				"wiring", "electrical",
			},
		},
	}
}

// Detect returns the first category whose keyword list matches the query,
// or "" when nothing matches.
func (d *CategoryDetector) Detect(query string) string {
	q := strings.ToLower(query)
	for category, words := range d.keywords {
		for _, w := range words {
			if strings.Contains(q, w) {
				return category
			}
		}
	}
	return ""
}
