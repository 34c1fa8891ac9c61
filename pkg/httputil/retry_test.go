package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	transient := Retryable(errors.New("transient"))
	permanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  []error
		wantCalls int
		wantErr   error
	}{
		{"success first try", nil, 1, nil},
		{"recovers", []error{transient, transient}, 3, nil},
		{"gives up", []error{transient, transient, transient, transient}, 3, transient},
		{"permanent error", []error{permanent}, 1, permanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Policy{Attempts: 3, Delay: time.Millisecond}.Retry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Retry() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Policy{Attempts: 5, Delay: time.Hour}.Retry(ctx, func() error {
		calls++
		cancel()
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain error reported as retryable")
	}
	if !IsRetryable(Retryable(ErrNetwork)) {
		t.Error("wrapped error not retryable")
	}
	if !errors.Is(Retryable(ErrNetwork), ErrNetwork) {
		t.Error("RetryableError should unwrap to its cause")
	}
}
