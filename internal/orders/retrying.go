package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// RetryPolicy bounds how long and how often a submission is attempted.
type RetryPolicy struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
}

// RetryingSubmitter wraps another Submitter with a per-attempt timeout and
// exponential backoff. Only errors whose code is marked retryable are retried.
type RetryingSubmitter struct {
	next   Submitter
	policy RetryPolicy
	logg   *logger.Logger
}

func NewRetryingSubmitter(next Submitter, policy RetryPolicy, logg *logger.Logger) (*RetryingSubmitter, error) {
	if next == nil {
		return nil, fmt.Errorf("submitter required")
	}
	if policy.MaxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be at least 1")
	}
	if policy.AttemptTimeout <= 0 {
		return nil, fmt.Errorf("attempt timeout must be positive")
	}
	if policy.BackoffBase <= 0 {
		policy.BackoffBase = 100 * time.Millisecond
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &RetryingSubmitter{next: next, policy: policy, logg: logg.Component("orders")}, nil
}

func (r *RetryingSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	backoff := retry.WithMaxRetries(uint64(r.policy.MaxAttempts-1), retry.NewExponential(r.policy.BackoffBase))

	var (
		receipt Receipt
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, r.policy.AttemptTimeout)
		defer cancel()

		res, err := r.next.Submit(attemptCtx, req)
		if err == nil {
			receipt = res
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) && pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "order submission attempt timed out")
		}
		if !pkgerrors.Retryable(err) {
			return err
		}

		logCtx := r.logg.WithFields(ctx, map[string]any{
			"attempt":      attempt,
			"max_attempts": r.policy.MaxAttempts,
		})
		r.logg.Warn(logCtx, "order.submit.retry")
		return retry.RetryableError(err)
	})
	if err == nil {
		return receipt, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Receipt{}, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "order submission interrupted")
	}
	if pkgerrors.Retryable(err) {
		return Receipt{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("order submission failed after %d attempts", attempt))
	}
	return Receipt{}, err
}
