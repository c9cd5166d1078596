// Package provider supplies candidate cards for the hybrid ranker.
//
// Providers never fail: a broken store or retriever is logged and yields
// an empty candidate list so the merge can continue with the other source.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/cardwise/internal/insight"
	"github.com/Veraticus/cardwise/internal/model"
)

// Provider returns an ordered, capped list of scored candidates for a key.
// The key is a user ID for model-ranked providers and a query for semantic ones.
type Provider interface {
	Fetch(ctx context.Context, key string) []model.ScoredCandidate
}

// ContextualizeQuery prefixes the query with the user's profile and appends
// their top spending categories.
func ContextualizeQuery(query string, profile *model.UserProfile, in *model.SpendingInsight) string {
	var b strings.Builder

	if !profile.IsZero() {
		fmt.Fprintf(&b, "user is %s %s, %s, %s. ",
			profile.AgeBand, profile.Gender, profile.Occupation, profile.SpendingSummary)
	}

	b.WriteString(query)

	if in != nil && len(in.Top) > 0 {
		b.WriteString(" top spending categories: ")
		b.WriteString(insight.FormatTop(*in))
	}

	return b.String()
}
