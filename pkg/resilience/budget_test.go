package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBudgetAllowsFastOperations(t *testing.T) {
	b := NewBudget(time.Second)
	err := b.Run(context.Background(), func(ctx context.Context) error {
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestBudgetCancelsSlowOperations(t *testing.T) {
	b := NewBudget(20 * time.Millisecond)
	err := b.Run(context.Background(), func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if !IsBudgetExceeded(err) {
		t.Fatalf("expected budget exceeded, got %v", err)
	}
}

func TestZeroBudgetDisablesLimit(t *testing.T) {
	b := NewBudget(0)
	err := b.Run(context.Background(), func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			return errors.New("unexpected deadline")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected no deadline, got %v", err)
	}
}

func TestBudgetPreservesOperationErrors(t *testing.T) {
	b := NewBudget(time.Second)
	boom := errors.New("boom")
	err := b.Run(context.Background(), func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if IsBudgetExceeded(err) {
		t.Fatalf("fast failure must not look like a timeout")
	}
}
