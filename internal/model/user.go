package model

// UserProfile is the demographic and spending context of the user asking for
// a recommendation.
type UserProfile struct {
	UserID          string `json:"user_id"`
	AgeBand         string `json:"age_band"`
	Gender          string `json:"gender"`
	IncomeLevel     string `json:"income_level"`
	Occupation      string `json:"occupation"`
	SpendingSummary string `json:"spending_summary"`
}

// IsZero reports whether the profile carries no information at all.
func (p *UserProfile) IsZero() bool {
	return p == nil || *p == UserProfile{}
}
