package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/cardwise/internal/recommend"
)

// ask runs one recommendation in the background.
func ask(ctx context.Context, cfg Config, question string) tea.Cmd {
	return func() tea.Msg {
		result, err := cfg.Recommender.Recommend(ctx, recommend.Request{
			UserID:  cfg.UserID,
			Query:   question,
			Limit:   cfg.Limit,
			Summary: cfg.Summary,
		})
		return answerMsg{question: question, result: result, err: err}
	}
}
