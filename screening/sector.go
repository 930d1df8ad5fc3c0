package screening

import (
	"fmt"
	"strings"
)

// SectorEvaluator matches a company's declared sector and industry strings
// against an ordered denylist of excluded business activities.
type SectorEvaluator struct {
	terms []string
}

// NewSectorEvaluator creates a SectorEvaluator with the given denylist.
// Order matters: the first matching term names the exclusion reason.
func NewSectorEvaluator(terms []string) *SectorEvaluator {
	return &SectorEvaluator{terms: terms}
}

// Evaluate reports whether the sector or industry contains an excluded
// activity. Matching is a case-insensitive substring test over the
// concatenated strings, so empty inputs match nothing.
func (e *SectorEvaluator) Evaluate(sector, industry string) (bool, string) {
	combined := strings.ToLower(sector + " " + industry)

	for _, term := range e.terms {
		if strings.Contains(combined, strings.ToLower(term)) {
			return true, fmt.Sprintf("Business sector/industry contains haram activity: %s", term)
		}
	}

	return false, ""
}
