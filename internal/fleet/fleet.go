// Package fleet runs the same switch operation against many hosts at once.
package fleet

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one host's call. Exactly one of Value or Err is set.
type Result[T any] struct {
	Host       string
	Value      T
	Err        error
	DurationMs int64
}

// Run calls fn once per host with at most workers calls in flight, and
// returns the results in host order. A failing host does not cancel the
// others; only cancellation of ctx stops hosts that have not started.
func Run[T any](ctx context.Context, hosts []string, workers int, fn func(ctx context.Context, host string) (T, error)) []Result[T] {
	results := make([]Result[T], len(hosts))
	if workers <= 0 {
		workers = 1
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, host := range hosts {
		results[i].Host = host
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			start := time.Now()
			v, err := fn(ctx, host)
			results[i].DurationMs = time.Since(start).Milliseconds()
			if err != nil {
				slog.Debug("fleet call failed",
					slog.String("host", host),
					slog.String("error", err.Error()),
				)
				results[i].Err = err
				return nil
			}
			results[i].Value = v
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed counts the results carrying an error.
func Failed[T any](results []Result[T]) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
