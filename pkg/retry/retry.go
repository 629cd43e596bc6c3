package retry

import (
	"context"

	"github.com/pkg/errors"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// Retrier retries the provided action.
type Retrier interface {
	Retry(action Action) (uint, error)

	// RetryWithContext is like Retry, but stops retrying once ctx is done.
	RetryWithContext(ctx context.Context, action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that will retry actions based off of the
// provided strategies. If no strategies are provided, the retrier acts
// as a tight-loop, retrying until no error is returned from the action.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

func (r *retrier) RetryWithContext(ctx context.Context, action Action) (uint, error) {
	return RetryWithContext(ctx, action, r.strategies...)
}

// Retry executes the provided action, potentially multiple times based off of
// the provided strategies. Retry will block until the action is successful, or
// one of the provided strategies indicate no further retries should be performed.
//
// The strategies are executed in the provided order, so any strategies that
// induce delays should be specified last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	return RetryWithContext(context.Background(), action, strategies...)
}

// RetryWithContext executes the action like Retry. Before each new attempt
// ctx is checked, and if it is done the context error is returned, annotated
// with the action's last error.
func RetryWithContext(ctx context.Context, action Action, strategies ...Strategy) (uint, error) {
	for attempts := uint(1); ; attempts++ {
		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, s := range strategies {
			if !s(attempts, err) {
				return attempts, err
			}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempts, errors.Wrapf(ctxErr, "stopped after %d attempts (last error: %v)", attempts, err)
		}
	}
}
