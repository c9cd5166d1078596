package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, cfg Config, opts ...tea.ProgramOption) error {
	if cfg.Recommender == nil {
		return fmt.Errorf("recommender is required")
	}

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(newModel(ctx, cfg), opts...)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat failed: %w", err)
	}
	return nil
}
