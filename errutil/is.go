package errutil

import (
	"context"
)

// IsContext reports whether ctx itself has ended, as opposed to an operation
// under it hitting its own deadline.
func IsContext(ctx context.Context) bool {
	return nil != ctx.Err()
}
