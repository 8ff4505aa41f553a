package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
)

func newTestBreaker(threshold int, halfOpen int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   halfOpen,
	})
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b, now := newTestBreaker(2, 1)

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !crerr.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open state, got %s", state)
	}
	if err := b.Allow(); !crerr.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful half-open probe, got %s", state)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, now := newTestBreaker(1, 1)

	b.RecordFailure()
	*now = now.Add(5 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected probe: %v", err)
	}
	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected reopened breaker, got %s", state)
	}
}

func TestCircuitBreaker_DoClassifiesErrors(t *testing.T) {
	b, _ := newTestBreaker(2, 1)
	ctx := context.Background()
	dataErr := errors.New("bad row")
	storeErr := errors.New("connection refused")
	isStoreFailure := func(err error) bool { return errors.Is(err, storeErr) }

	for i := 0; i < 3; i++ {
		if err := b.Do(ctx, func(context.Context) error { return dataErr }, isStoreFailure); !errors.Is(err, dataErr) {
			t.Fatalf("expected data error passthrough, got %v", err)
		}
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("data errors must not trip the breaker, got %s", state)
	}

	for i := 0; i < 2; i++ {
		_ = b.Do(ctx, func(context.Context) error { return storeErr }, isStoreFailure)
	}
	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil }, isStoreFailure)
	if called || !crerr.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker to short-circuit, called=%v err=%v", called, err)
	}
}

func TestCircuitBreaker_DisabledIsNil(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("expected nil breaker when disabled")
	}
	if err := b.Do(context.Background(), func(context.Context) error { return nil }, nil); err != nil {
		t.Fatalf("nil breaker should pass through: %v", err)
	}
	if b.State() != CircuitStateClosed {
		t.Fatalf("nil breaker should report closed")
	}
}
