// Package tui implements the interactive recommendation chat.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/cardwise/internal/recommend"
)

// Recommender answers questions.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

// Config holds chat settings.
type Config struct {
	Recommender Recommender
	UserID      string
	Limit       int
	Width       int
	Height      int
	Summary     bool
}

// exchange is one question and its answer.
type exchange struct {
	result   *recommend.Result
	err      error
	question string
}

// Model holds the chat state.
type Model struct {
	ctx      context.Context
	config   Config
	keymap   KeyMap
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	history  []exchange
	pending  string
	width    int
	height   int
	loading  bool
	quitting bool
}

const (
	headerHeight = 2
	footerHeight = 3
)

func newModel(ctx context.Context, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "Ask about a card, e.g. \"cashback on groceries and coffee\""
	input.Prompt = "› "
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	if cfg.Height <= 0 {
		cfg.Height = 24
	}

	m := Model{
		ctx:      ctx,
		config:   cfg,
		keymap:   DefaultKeyMap(),
		input:    input,
		spinner:  sp,
		viewport: viewport.New(cfg.Width, cfg.Height-headerHeight-footerHeight),
		width:    cfg.Width,
		height:   cfg.Height,
	}
	m.refresh()
	return m
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-headerHeight-footerHeight)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		m.loading = false
		m.pending = ""
		m.history = append(m.history, exchange(msg))
		m.refresh()
		m.viewport.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keymap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		if !m.loading {
			m.history = nil
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		question := strings.TrimSpace(m.input.Value())
		if question == "" || m.loading {
			return m, nil
		}
		if isExit(question) {
			m.quitting = true
			return m, tea.Quit
		}
		m.input.Reset()
		m.loading = true
		m.pending = question
		m.refresh()
		m.viewport.GotoBottom()
		return m, tea.Batch(m.spinner.Tick, ask(m.ctx, m.config, question))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// isExit reports whether the user typed one of the exit words.
func isExit(s string) bool {
	switch strings.ToLower(s) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
}
