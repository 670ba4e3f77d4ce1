package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// AllOf is the strict fan-in combinator: every op must succeed. The first
// failure cancels the group context and its error is returned; results of
// the other ops, if they arrive at all, are discarded by the caller because
// the combined step failed.
func AllOf(ctx context.Context, ops ...func(context.Context) error) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, op := range ops {
		g.Go(func() error { return op(ctx) })
	}
	return g.Wait()
}

// EachOf is the best-effort fan-out combinator: n ops run concurrently and
// fail independently. Results and errors are index-aligned with the ops, so
// a caller can degrade failed items without losing the successful ones.
func EachOf[T any](ctx context.Context, n int, op func(ctx context.Context, i int) (T, error)) ([]T, []error) {
	results := make([]T, n)
	errs := make([]error, n)

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			results[i], errs[i] = op(ctx, i)
			return nil
		})
	}
	g.Wait()
	return results, errs
}
