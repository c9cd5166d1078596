// Package insight derives per-category spending shares from raw spend amounts.
package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Veraticus/cardwise/internal/model"
)

const (
	// TopCategoryCount is how many categories Extract reports as top spend.
	TopCategoryCount = 3

	// SummaryMarker ends the category list in a generated spending summary.
	SummaryMarker = " are the main spending areas"

	// GeneralSummary is used when there is no spending to summarize.
	GeneralSummary = "general spending habits"
)

// Extract computes each category's share of total and the top categories by amount.
// A non-positive total is replaced by 1 for the percentage computation only.
// Percentages are rounded per category and may not sum to exactly 100.
func Extract(amounts map[string]float64, total float64) model.SpendingInsight {
	effectiveTotal := total
	if effectiveTotal <= 0 {
		effectiveTotal = 1
	}

	result := model.SpendingInsight{
		Categories: make(map[string]model.CategoryInsight, len(amounts)),
		TotalSpend: total,
	}

	named := make([]model.NamedInsight, 0, len(amounts))
	for category, amount := range amounts {
		ci := model.CategoryInsight{
			Amount:     amount,
			Percentage: roundTenth(amount / effectiveTotal * 100),
		}
		result.Categories[category] = ci
		named = append(named, model.NamedInsight{Category: category, CategoryInsight: ci})
	}

	sort.Slice(named, func(i, j int) bool {
		if named[i].Amount != named[j].Amount {
			return named[i].Amount > named[j].Amount
		}
		return named[i].Category < named[j].Category
	})

	if len(named) > TopCategoryCount {
		named = named[:TopCategoryCount]
	}
	result.Top = named

	return result
}

// ExtractFor is Extract over a fixed category list; categories absent from
// amounts are reported with zero spend.
func ExtractFor(categories []string, amounts map[string]float64, total float64) model.SpendingInsight {
	filled := make(map[string]float64, len(categories))
	for _, category := range categories {
		filled[category] = amounts[category]
	}
	return Extract(filled, total)
}

// Total sums all amounts.
func Total(amounts map[string]float64) float64 {
	var total float64
	for _, amount := range amounts {
		total += amount
	}
	return total
}

// FormatTop renders the top categories as "dining(60.0%), shopping(40.0%)".
func FormatTop(in model.SpendingInsight) string {
	parts := make([]string, 0, len(in.Top))
	for _, top := range in.Top {
		parts = append(parts, fmt.Sprintf("%s(%.1f%%)", top.Category, top.Percentage))
	}
	return strings.Join(parts, ", ")
}

// Summarize builds the spending summary stored on a user profile.
func Summarize(in model.SpendingInsight) string {
	if len(in.Top) == 0 || in.TotalSpend <= 0 {
		return GeneralSummary
	}
	return FormatTop(in) + SummaryMarker
}

// SummaryCategories recovers the category names from a summary produced by
// Summarize. Parenthetical percentages are stripped and empty names skipped.
func SummaryCategories(summary string) []string {
	head, _, found := strings.Cut(summary, SummaryMarker)
	if !found {
		return nil
	}

	var categories []string
	for _, part := range strings.Split(head, ",") {
		part = strings.TrimSpace(part)
		if idx := strings.Index(part, "("); idx >= 0 {
			part = strings.TrimSpace(part[:idx])
		}
		if part == "" {
			continue
		}
		categories = append(categories, part)
	}
	return categories
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
