package treasury

import (
	"context"
	"errors"
	"time"
)

// DefaultKeeperInterval is the poll interval RunKeeper falls back to.
const DefaultKeeperInterval = time.Minute

// RunKeeper polls the eligibility predicate every interval and executes a
// cycle whenever the window opens. It is the trigger loop for deployments
// without an external scheduler. Execution failures are passed to onError,
// which may be nil, and polling continues; losing a race to another trigger
// is not reported. Blocks until ctx is cancelled.
func (t *Treasury) RunKeeper(ctx context.Context, interval time.Duration, onError func(error)) error {
	if interval <= 0 {
		interval = DefaultKeeperInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			eligible, opaque := t.CheckEligibility()
			if !eligible {
				continue
			}
			_, err := t.Execute(ctx, opaque)
			if err == nil || errors.Is(err, ErrNotDue) || errors.Is(err, ErrOperationInProgress) {
				continue
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
