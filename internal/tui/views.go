package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/cardwise/internal/cli"
	"github.com/Veraticus/cardwise/internal/common"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.PrimaryColor)
	questionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.InfoColor)
	helpStyle    = lipgloss.NewStyle().Foreground(cli.SubtleColor)
	spinnerStyle = lipgloss.NewStyle().Foreground(cli.PrimaryColor)
)

// View renders the chat.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := headerStyle.Render(cli.CardIcon + " cardwise chat")
	if m.config.UserID != "" {
		header += helpStyle.Render("  user " + m.config.UserID)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.viewport.View(),
		m.input.View(),
		"",
		m.helpView(),
	)
}

func (m Model) helpView() string {
	parts := make([]string, 0, len(m.keymap.ShortHelp()))
	for _, b := range m.keymap.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, " • "))
}

// transcript renders every exchange plus the in-flight question.
func (m Model) transcript() string {
	if len(m.history) == 0 && !m.loading {
		return helpStyle.Render("Ask a question to get card recommendations. Type exit to leave.")
	}

	var b strings.Builder
	for _, ex := range m.history {
		b.WriteString(questionStyle.Render("› " + ex.question))
		b.WriteString("\n")
		switch {
		case ex.err != nil:
			msg, ok := common.UserMessage(ex.err)
			if !ok {
				msg = "Something went wrong: " + ex.err.Error()
			}
			b.WriteString(cli.FormatError(msg))
			b.WriteString("\n")
		default:
			b.WriteString(cli.FormatResult(ex.result))
		}
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(questionStyle.Render("› " + m.pending))
		b.WriteString("\n")
		b.WriteString(m.spinner.View() + " Finding cards...")
		b.WriteString("\n")
	}

	return b.String()
}
