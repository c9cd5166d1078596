package model

// CategoryInsight is the spend in one category relative to the user's total.
type CategoryInsight struct {
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// NamedInsight pairs a CategoryInsight with its category name.
type NamedInsight struct {
	Category string `json:"category"`
	CategoryInsight
}

// SpendingInsight is a per-category breakdown of a user's spending.
type SpendingInsight struct {
	Categories map[string]CategoryInsight `json:"categories"`
	Top        []NamedInsight             `json:"top"`
	TotalSpend float64                    `json:"total_spend"`
}

// TopCategory returns the highest-spend category, if any.
func (s *SpendingInsight) TopCategory() (NamedInsight, bool) {
	if s == nil || len(s.Top) == 0 {
		return NamedInsight{}, false
	}
	return s.Top[0], true
}

// TopNames returns the top category names in rank order.
func (s *SpendingInsight) TopNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Top))
	for _, top := range s.Top {
		names = append(names, top.Category)
	}
	return names
}
