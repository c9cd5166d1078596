package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/cardwise/internal/model"
)

func TestCardDocument(t *testing.T) {
	doc := CardDocument(model.Candidate{
		CardID:           "c1",
		Name:             "Dining Plus",
		Issuer:           "Acme",
		Type:             "credit",
		RawBenefits:      "dining: 5% back; travel: lounge",
		DetailedBenefits: "  Up to 30,000 per month.  ",
	})

	assert.Equal(t, "Dining Plus (Acme)\nType: credit\nBenefits:\n- dining: 5% back\n- travel: lounge\nDetails: Up to 30,000 per month.", doc)
}

func TestCardDocument_Minimal(t *testing.T) {
	assert.Equal(t, "Plain", CardDocument(model.Candidate{Name: "Plain"}))
	assert.Equal(t, "Plain\nBenefits:\n- benefit: cashback everywhere",
		CardDocument(model.Candidate{Name: "Plain", RawBenefits: "cashback everywhere"}))
}
