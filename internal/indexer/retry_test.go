package indexer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts mismatch: %d", attempts)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	attempts := 0
	wantErr := errors.New("down")
	err := withRetry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
	if attempts != 3 {
		t.Fatalf("attempts mismatch: %d", attempts)
	}
}

func TestWithRetryPermanent(t *testing.T) {
	attempts := 0
	wantErr := errors.New("corrupt")
	err := withRetry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		attempts++
		return permanent(wantErr)
	})
	if err != wantErr {
		t.Fatalf("expected unwrapped %v, got %v", wantErr, err)
	}
	if attempts != 1 {
		t.Fatalf("permanent errors must not be retried, attempts: %d", attempts)
	}
}

func TestWithRetryContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := withRetry(ctx, 5, time.Hour, func(context.Context) error {
		return errors.New("transient")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
}
