package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrBudgetExceeded marks an operation aborted by its time budget.
var ErrBudgetExceeded = errors.New("time budget exceeded")

// Budget is a hard time limit on a single operation. The wrapped
// function receives a context that is cancelled at the deadline; any
// in-flight I/O bound to that context is torn down, and a late result
// is discarded rather than returned.
type Budget struct {
	Timeout time.Duration
}

func NewBudget(timeout time.Duration) Budget {
	return Budget{Timeout: timeout}
}

// Run executes fn under the budget. A zero timeout disables the limit.
func (b Budget) Run(ctx context.Context, fn func(context.Context) error) error {
	if b.Timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	err := fn(ctx)
	if err != nil && ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w after %s: %v", ErrBudgetExceeded, b.Timeout, err)
	}
	return err
}

// IsBudgetExceeded reports whether err came from a budget deadline.
func IsBudgetExceeded(err error) bool {
	return errors.Is(err, ErrBudgetExceeded)
}
