package orchestrator

import (
	"context"
	"time"
)

// Run ticks every interval until the orchestrator is idle or ctx is done.
// It is the non-interactive host loop; interactive hosts call Tick from
// their own event loop instead.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !o.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			o.Tick(ctx)
		}
	}
	return nil
}
