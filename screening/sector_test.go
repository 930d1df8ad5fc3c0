package screening

import (
	"strings"
	"testing"
)

var testDenylist = []string{
	"Gambling",
	"Alcohol",
	"Tobacco",
	"Adult Entertainment",
	"Conventional Banking",
	"Insurance",
	"Military Hardware",
	"Defense",
	"Weapons",
}

func TestSectorEvaluator(t *testing.T) {
	evaluator := NewSectorEvaluator(testDenylist)

	tests := []struct {
		name         string
		sector       string
		industry     string
		wantExcluded bool
		wantTerm     string
	}{
		{"clean technology company", "Technology", "Consumer Electronics", false, ""},
		{"gambling sector", "Gambling", "Casinos", true, "Gambling"},
		{"term inside industry", "Consumer Defensive", "Beverages - Alcohol", true, "Alcohol"},
		{"case insensitive match", "TOBACCO", "", true, "Tobacco"},
		{"substring inside longer phrase", "Financial Services", "Conventional Banking - Regional", true, "Conventional Banking"},
		{"empty inputs match nothing", "", "", false, ""},
		{"first match wins over later terms", "Gambling and Weapons", "", true, "Gambling"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excluded, reason := evaluator.Evaluate(tt.sector, tt.industry)
			if excluded != tt.wantExcluded {
				t.Errorf("expected excluded=%v, got %v", tt.wantExcluded, excluded)
			}
			if !tt.wantExcluded {
				if reason != "" {
					t.Errorf("expected empty reason, got %q", reason)
				}
				return
			}
			if !strings.Contains(reason, tt.wantTerm) {
				t.Errorf("expected reason to name %q, got %q", tt.wantTerm, reason)
			}
		})
	}
}

func TestSectorEvaluatorCrossFieldMatch(t *testing.T) {
	// Sector and industry are joined with a single space, so a multi-word
	// term can match across the field boundary.
	evaluator := NewSectorEvaluator([]string{"Adult Entertainment"})

	excluded, _ := evaluator.Evaluate("Adult", "Entertainment")
	if !excluded {
		t.Error("expected match across concatenated sector and industry")
	}
}
