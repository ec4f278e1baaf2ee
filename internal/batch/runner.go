// Package batch processes many sprite sheets with per-file isolation: a
// failing file is recorded and the run continues with the next one.
package batch

import (
	"context"
	"fmt"
	"sync"
)

// ProcessFunc handles one file.
type ProcessFunc func(ctx context.Context, path string) error

// Failure records why a file could not be processed.
type Failure struct {
	Path string
	Err  error
}

// Stats tracks the outcome of a batch run.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// Run calls fn for every file with at most parallel calls in flight.
// Errors and panics from fn count as failures of that file only. Once ctx
// is done no further files are started; those are reported as failed with
// the context error. Failures are listed in input order.
func Run(ctx context.Context, files []string, parallel int, fn ProcessFunc) Stats {
	parallel = max(parallel, 1)
	errs := make([]error, len(files))
	sem := make(chan struct{}, parallel)

	var wg sync.WaitGroup
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[idx] = runOne(ctx, path, fn)
		}(i, path)
	}
	wg.Wait()

	st := Stats{Total: len(files)}
	for i, err := range errs {
		if err != nil {
			st.Failed++
			st.Failures = append(st.Failures, Failure{Path: files[i], Err: err})
			continue
		}
		st.Succeeded++
	}
	return st
}

func runOne(ctx context.Context, path string, fn ProcessFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, path)
}
