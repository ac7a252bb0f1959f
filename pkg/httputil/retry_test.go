package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	tests := []struct {
		name         string
		failures     int  // number of retryable failures before success
		permanent    bool // return a non-retryable error instead
		attempts     int
		wantCalls    int
		wantErr      bool
		wantRetryErr bool // expect the retryable error to surface
	}{
		{"immediate success", 0, false, 3, 1, false, false},
		{"success after one retry", 1, false, 3, 2, false, false},
		{"success on last attempt", 2, false, 3, 3, false, false},
		{"exhausted attempts", 5, false, 3, 3, true, true},
		{"permanent error stops retries", 0, true, 3, 1, true, false},
		{"attempts clamped to one", 0, true, 0, 1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Microsecond, func() error {
				calls++
				if tt.permanent {
					return errors.New("permanent")
				}
				if calls <= tt.failures {
					return &RetryableError{Err: errors.New("transient")}
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantRetryErr && !errors.As(err, new(*RetryableError)) {
				t.Errorf("err = %v, want RetryableError", err)
			}
		})
	}
}

func TestRetryCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, 3, time.Hour, func() error {
		calls++
		return &RetryableError{Err: errors.New("transient")}
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry after cancellation)", calls)
	}
}

func TestRetryableErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &RetryableError{Err: inner}

	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "boom")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is(err, inner) = false, want true")
	}
}
