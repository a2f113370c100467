package processing

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// keyed runs at most one computation per key at a time. Concurrent callers
// for the same key share the result of the computation in flight.
type keyed struct {
	group singleflight.Group
}

// do runs fn for key unless a call for key is already running. fn does not
// observe the caller's cancellation; the caller stops waiting when ctx is
// done and the computation completes for the remaining waiters.
func do[T any](ctx context.Context, k *keyed, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := k.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		return res.Val.(T), res.Shared, nil
	}
}
