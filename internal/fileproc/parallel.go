// Package fileproc provides concurrent file processing utilities.
// Files are independent units of work; the only cross-file joins in the
// pipeline are pure folds over per-file results.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/kober-systems/guidelines/pkg/analyzer"
	"github.com/kober-systems/guidelines/pkg/parser"
)

// ProcessingError represents an error that occurred while processing a
// file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is applied to NumCPU for the worker count;
// 2x covers the mixed I/O and CGO workload of parsing.
const DefaultWorkerMultiplier = 2

// result marks a filled slot so output order can match input order
// regardless of completion order.
type result[T any] struct {
	value T
	ok    bool
}

// MapFiles processes files in parallel, each file parsed with its own
// parser. Results come back in input order; per-file failures are
// collected, not fatal. Progress is tracked via analyzer.WithTracker.
func MapFiles[T any](ctx context.Context, files []string, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	maxWorkers := runtime.NumCPU() * DefaultWorkerMultiplier
	slots := make([]result[T], len(files))
	errs := &ProcessingErrors{}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				errs.Add(path, ctx.Err())
				return ctx.Err()
			default:
			}

			psr := parser.New()
			defer psr.Close()

			value, err := fn(psr, path)
			if tracker != nil {
				tracker.Tick(path)
			}
			if err != nil {
				errs.Add(path, err)
				return nil
			}

			slots[i] = result[T]{value: value, ok: true}
			return nil
		})
	}
	_ = p.Wait()

	results := make([]T, 0, len(files))
	for _, slot := range slots {
		if slot.ok {
			results = append(results, slot.value)
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	return results, errs
}
