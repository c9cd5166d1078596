package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
)

// Progress is a counting progress bar for long batch jobs.
type Progress struct {
	bar *progressbar.ProgressBar
}

// NewProgress creates a progress bar expecting total steps.
func NewProgress(w io.Writer, total int, description string) *Progress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &Progress{bar: bar}
}

// Step advances the bar by one.
func (p *Progress) Step() {
	if err := p.bar.Add(1); err != nil {
		slog.Debug("Failed to update progress bar", "error", err)
	}
}

// Current returns the number of completed steps.
func (p *Progress) Current() int {
	return int(p.bar.State().CurrentNum)
}
