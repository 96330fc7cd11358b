// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e ProcessingError) Unwrap() error {
	return e.Err
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// Workers resolves a configured worker count, defaulting to 2x NumCPU.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU() * DefaultWorkerMultiplier
	}
	return n
}

// MapFiles processes files in parallel and returns the results in input
// order. The first failing file cancels the remaining work and its error,
// wrapped in a ProcessingError, is returned; no partial results are returned
// in that case.
func MapFiles[T any](ctx context.Context, files []string, maxWorkers int, fn func(context.Context, string) (T, error), onProgress ProgressFunc) ([]T, error) {
	if len(files) == 0 {
		return nil, nil
	}

	results := make([]T, len(files))

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(Workers(maxWorkers))
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := fn(ctx, path)
			if onProgress != nil {
				onProgress()
			}
			if err != nil {
				return ProcessingError{Path: path, Err: err}
			}

			// each goroutine owns its slot
			results[i] = result
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
