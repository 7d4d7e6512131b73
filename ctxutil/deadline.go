package ctxutil

import (
	"context"
	"time"
)

// WithDelayedTimeout returns a context that is canceled delay after parent is
// done, or when the returned cancel function is called.
func WithDelayedTimeout(parent context.Context, delay time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-parent.Done():
			time.AfterFunc(delay, cancel)
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
