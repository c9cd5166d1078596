package embed

import (
	"strings"

	"github.com/Veraticus/cardwise/internal/benefit"
	"github.com/Veraticus/cardwise/internal/model"
)

// CardDocument builds the text that represents a card in the embedding space.
func CardDocument(card model.Candidate) string {
	var b strings.Builder

	b.WriteString(card.Name)
	if card.Issuer != "" {
		b.WriteString(" (")
		b.WriteString(card.Issuer)
		b.WriteString(")")
	}
	if card.Type != "" {
		b.WriteString("\nType: ")
		b.WriteString(card.Type)
	}

	if lines := benefit.Format(benefit.Parse(card.RawBenefits)); len(lines) > 0 {
		b.WriteString("\nBenefits:")
		for _, line := range lines {
			b.WriteString("\n- ")
			b.WriteString(line)
		}
	}

	if detailed := strings.TrimSpace(card.DetailedBenefits); detailed != "" {
		b.WriteString("\nDetails: ")
		b.WriteString(detailed)
	}

	return b.String()
}
