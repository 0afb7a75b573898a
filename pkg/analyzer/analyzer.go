// Package analyzer defines the shared contracts between the CLI, the
// file processing pool and the individual analysis passes.
package analyzer

import "context"

// Tracker receives progress updates during long-running analysis.
type Tracker interface {
	// Add raises the expected total by n.
	Add(n int)
	// Tick records one processed file.
	Tick(path string)
}

type trackerKey struct{}

// WithTracker attaches a progress tracker to the context.
func WithTracker(ctx context.Context, t Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the attached tracker, or nil.
func TrackerFromContext(ctx context.Context) Tracker {
	t, _ := ctx.Value(trackerKey{}).(Tracker)
	return t
}
