// Package model defines the domain types shared by the recommendation pipeline.
package model

// Candidate is a recommendable card with its static reference attributes.
// Candidates are owned by the store and treated as read-only everywhere else.
type Candidate struct {
	CardID           string `json:"card_id"`
	Name             string `json:"name"`
	Issuer           string `json:"issuer"`
	RawBenefits      string `json:"benefits"`
	Type             string `json:"type,omitempty"`
	DetailedBenefits string `json:"detailed_benefits,omitempty"`
	ImageURL         string `json:"image_url,omitempty"`
}

// ParsedBenefit is one category/description pair extracted from a benefits string.
type ParsedBenefit struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}
