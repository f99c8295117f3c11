package search

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/trace"
)

// SweepResult is one k's outcome from a multi-k sweep.
type SweepResult struct {
	K   int64
	Seq instr.Sequence
	Err error
}

// Sweep runs Find independently for every k in [from, to] against this
// Engine's shared cache, across up to workers goroutines. Each Find call
// is itself single-threaded and synchronous; this only parallelises the
// independent top-level calls, exercising the cache's own internal
// locking rather than bypassing it. workers <= 0 defaults to GOMAXPROCS.
func (e *Engine) Sweep(ctx context.Context, from, to int64, workers int) ([]SweepResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if to < from {
		return nil, nil
	}

	results := make([]SweepResult, to-from+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for k := from; k <= to; k++ {
		k := k
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seq, err := e.Find(k)
			results[k-from] = SweepResult{K: k, Seq: seq, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	// A single atomic pass over the cache counts requested k without a
	// finished entry and reports that count as a trace event; the sweep's
	// return values do not depend on it.
	var missing int
	e.Cache.Locked(func(entries map[int64]cache.Entry) {
		for k := from; k <= to; k++ {
			if en, ok := entries[k]; !ok || !en.Finished {
				missing++
			}
		}
	})
	if missing > 0 {
		e.emit(trace.EventCutoff, from, 0, float64(to), "sweep_incomplete", float64(missing))
	}

	return results, nil
}
