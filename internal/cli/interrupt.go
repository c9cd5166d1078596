package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler cancels a context on SIGINT/SIGTERM and prints a short notice.
type InterruptHandler struct {
	writer      io.Writer
	notify      func(chan<- os.Signal)
	hint        string
	interrupted bool
	mu          sync.Mutex
}

// NewInterruptHandler creates a new interrupt handler. hint, if set, is
// printed after the notice, e.g. how to resume the interrupted work.
func NewInterruptHandler(writer io.Writer, hint string) *InterruptHandler {
	if writer == nil {
		writer = os.Stdout
	}
	return &InterruptHandler{
		writer: writer,
		hint:   hint,
		notify: func(c chan<- os.Signal) { signal.Notify(c, os.Interrupt, syscall.SIGTERM) },
	}
}

// HandleInterrupts returns a context that is canceled on interrupt. The
// returned stop function releases the signal handler.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	h.notify(sigChan)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.mu.Lock()
			if !h.interrupted {
				h.interrupted = true
				h.showInterruptMessage()
			}
			h.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func (h *InterruptHandler) showInterruptMessage() {
	msg := "\n" + FormatWarning("Interrupted!")
	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}
	msg += "\n"

	if _, err := fmt.Fprint(h.writer, msg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write interrupt message: %v\n", err)
	}
}

// WasInterrupted returns true if the process was interrupted.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}
