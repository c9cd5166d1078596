package tui

import "github.com/Veraticus/cardwise/internal/recommend"

// answerMsg carries the outcome of one question.
type answerMsg struct {
	result   *recommend.Result
	err      error
	question string
}
