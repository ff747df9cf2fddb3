package common

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errTransient = errors.New("transient")
var errPermanent = errors.New("permanent")

func TestRetryPolicy_RetriesUntilSuccess(t *testing.T) {
	p := NewRetryPolicy(3, time.Millisecond, func(err error) bool {
		return errors.Is(err, errTransient)
	})

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicy_StopsAtAttemptCap(t *testing.T) {
	p := NewRetryPolicy(3, time.Millisecond, func(err error) bool { return true })

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errTransient
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestRetryPolicy_PermanentErrorFailsImmediately(t *testing.T) {
	p := NewRetryPolicy(5, time.Millisecond, func(err error) bool {
		return errors.Is(err, errTransient)
	})

	calls := 0
	err := p.Do(context.Background(), func() error {
		calls++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 attempt, got %d", calls)
	}
}

func TestRetryPolicy_ContextCancellation(t *testing.T) {
	p := NewRetryPolicy(10, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Do(ctx, func() error { return errTransient })
	if err == nil {
		t.Fatal("expected error with cancelled context")
	}
}

func TestIsFresh(t *testing.T) {
	if IsFresh(time.Time{}, time.Hour) {
		t.Error("zero time must never be fresh")
	}
	if !IsFresh(time.Now().Add(-time.Minute), time.Hour) {
		t.Error("one minute old should be fresh within an hour TTL")
	}
	if IsFresh(time.Now().Add(-2*time.Hour), time.Hour) {
		t.Error("two hours old should be stale for an hour TTL")
	}
}
