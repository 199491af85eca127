package coordinator

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"helix/pkg/domerr"
)

// withRetry runs op with exponential backoff for transient store failures.
// Anything that is not a store timeout or unavailability fails immediately.
// The context deadline (the sync SLA) bounds the whole attempt.
func (c *Coordinator) withRetry(ctx context.Context, op func(ctx context.Context) error) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if domerr.IsRetryable(err) {
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
