// Package explain produces the human-readable reason attached to a recommended card.
package explain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/cardwise/internal/insight"
	"github.com/Veraticus/cardwise/internal/model"
)

// InsightThreshold is the share of spend, in percent, above which the top
// category gets its own sentence.
const InsightThreshold = 10.0

// Explain builds the reason text for card given the query and optional user context.
// It always returns at least the base sentence.
func Explain(card model.Candidate, query string, profile *model.UserProfile, in *model.SpendingInsight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s provides benefits relevant to '%s'.", card.Name, query)

	benefits := fold(card.RawBenefits)
	if benefits == "" {
		return b.String()
	}

	if category, ok := firstMatch(benefits, candidateCategories(profile, in)); ok {
		fmt.Fprintf(&b, " In particular, the %s benefit matches your spending pattern.", category)
	}

	if top, ok := in.TopCategory(); ok && top.Percentage > InsightThreshold && contains(benefits, top.Category) {
		fmt.Fprintf(&b, " You spend %.1f%% of your total on %s, so this benefit is especially useful.",
			top.Percentage, top.Category)
	}

	return b.String()
}

// candidateCategories lists profile summary categories first, then insight top categories.
func candidateCategories(profile *model.UserProfile, in *model.SpendingInsight) []string {
	var categories []string
	if !profile.IsZero() {
		categories = append(categories, insight.SummaryCategories(profile.SpendingSummary)...)
	}
	return append(categories, in.TopNames()...)
}

func firstMatch(foldedBenefits string, categories []string) (string, bool) {
	for _, category := range categories {
		if contains(foldedBenefits, category) {
			return category, true
		}
	}
	return "", false
}

// contains reports whether category occurs in already-folded benefit text.
// Matching is broader than an exact substring test: both sides are NFKC
// normalized and case folded, so "Dining" matches "dining" and full-width
// forms match their ASCII equivalents. Empty categories never match.
func contains(foldedBenefits, category string) bool {
	needle := fold(strings.TrimSpace(category))
	if needle == "" {
		return false
	}
	return strings.Contains(foldedBenefits, needle)
}

// fold normalizes text for case-insensitive matching.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}
