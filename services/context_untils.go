package services

import (
	"context"
	"time"
)

// persistentContext detaches ctx from request cancellation so post-commit
// work (push, mail, events) can finish after the response is written. The
// returned context is still bounded by timeout.
func persistentContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	base := context.WithoutCancel(ctx)
	if timeout <= 0 {
		return base, func() {}
	}
	return context.WithTimeout(base, timeout)
}
