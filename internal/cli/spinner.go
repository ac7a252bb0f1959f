package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerInterval is the frame advance rate.
const spinnerInterval = 80 * time.Millisecond

// spinnerFrames is the braille animation cycle.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner provides a simple progress indicator with context cancellation support.
// It animates on stderr so command output on stdout stays clean.
type Spinner struct {
	message  string
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc
	finished chan struct{}
	stop     sync.Once
	mu       sync.Mutex
}

// newSpinner creates a new spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message:  message,
		parent:   ctx,
		ctx:      spinnerCtx,
		cancel:   cancel,
		finished: make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.finished)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(os.Stderr, "\r%s %s",
					styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)]),
					StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop stops the spinner and clears the line. Safe to call multiple times.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		<-s.finished
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled returns true if the spinner was stopped by its context rather
// than an explicit Stop call.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
