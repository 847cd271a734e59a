// Package batch runs extraction work across a bounded set of workers and
// writes the results into a destination tree.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Process calls fn for every job with at most workers calls in flight.
//
// Workers below 1 run the jobs serially. The first error cancels the context
// passed to the remaining calls and is returned; jobs not yet started are
// skipped.
func Process[T any](ctx context.Context, jobs []T, workers int, fn func(context.Context, T) error) error {
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		for _, job := range jobs {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, job); err != nil {
				return err
			}
		}
		return nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, job := range jobs {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return fn(egCtx, job)
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
