package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerBasic(t *testing.T) {
	s := newSpinner("Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// A plain Stop is not a cancellation.
	if s.Cancelled() {
		t.Error("Cancelled() = true after plain Stop")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Testing with context...")
	s.Start()

	cancel()

	// Give the goroutine time to notice the cancellation
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Testing with timeout...")
	s.Start()

	// Wait for the timeout
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.Start()

	// Stop multiple times should not panic
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Testing success...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done!")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Testing error...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed!")
}

func TestSpinnerStopBeforeFirstFrame(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), "Test")
	s.Start()
	s.Stop()
}
