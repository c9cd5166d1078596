// Package benefit turns free-text card benefit descriptions into structured entries.
package benefit

import (
	"strings"

	"github.com/Veraticus/cardwise/internal/model"
)

// FallbackCategory labels the single entry produced when the text has no delimiters.
const FallbackCategory = "benefit"

// itemDelimiters are tried in order; the first one present in the text wins.
var itemDelimiters = []string{";", "\n"}

// categorySeparators split an item into category and description, checked in order.
var categorySeparators = []string{":", "→"}

// Parse splits a benefits string into category/description pairs, preserving source order.
func Parse(text string) []model.ParsedBenefit {
	if text == "" {
		return nil
	}

	for _, delimiter := range itemDelimiters {
		if !strings.Contains(text, delimiter) {
			continue
		}

		var benefits []model.ParsedBenefit
		for _, item := range strings.Split(text, delimiter) {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			benefits = append(benefits, parseItem(item))
		}
		return benefits
	}

	return []model.ParsedBenefit{{Category: FallbackCategory, Description: text}}
}

// parseItem splits one trimmed, non-empty item.
func parseItem(item string) model.ParsedBenefit {
	for _, sep := range categorySeparators {
		category, description, found := strings.Cut(item, sep)
		if found {
			return model.ParsedBenefit{
				Category:    strings.TrimSpace(category),
				Description: strings.TrimSpace(description),
			}
		}
	}
	return model.ParsedBenefit{Category: item}
}

// Format renders parsed benefits as display lines: "category: description",
// or the bare category when there is no description.
func Format(benefits []model.ParsedBenefit) []string {
	lines := make([]string, 0, len(benefits))
	for _, b := range benefits {
		if b.Description == "" {
			lines = append(lines, b.Category)
			continue
		}
		lines = append(lines, b.Category+": "+b.Description)
	}
	return lines
}
