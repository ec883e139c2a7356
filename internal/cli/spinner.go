package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner animates a one-line progress message while a remote backend
// connects. It clears itself when the parent context ends.
type spinner struct {
	out     io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	exited  chan struct{}

	mu      sync.Mutex // guards the flags below and writes to out
	started bool
	stopped bool
}

// newSpinner creates a spinner writing to out, or to stderr when out is nil.
func newSpinner(ctx context.Context, out io.Writer, message string) *spinner {
	if out == nil {
		out = os.Stderr
	}
	sctx, cancel := context.WithCancel(ctx)
	return &spinner{
		out:     out,
		message: message,
		ctx:     sctx,
		cancel:  cancel,
		exited:  make(chan struct{}),
	}
}

func (s *spinner) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	go s.run()
}

func (s *spinner) run() {
	defer close(s.exited)
	t := time.NewTicker(spinnerInterval)
	defer t.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-t.C:
			frame := styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)])
			s.mu.Lock()
			fmt.Fprintf(s.out, "\r%s %s", frame, StyleDim.Render(s.message))
			s.mu.Unlock()
		}
	}
}

// stop ends the animation and clears the line. Calling it again, or
// before start, is harmless.
func (s *spinner) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	s.cancel()
	if started {
		<-s.exited
	}
	s.clear()
}

// interrupted reports whether the parent context ended the spinner before
// stop was called.
func (s *spinner) interrupted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.ctx.Err() != nil
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

func (s *spinner) succeed(message string) {
	s.stop()
	printSuccess("%s", message)
}

func (s *spinner) fail(message string) {
	s.stop()
	printError("%s", message)
}
