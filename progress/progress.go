// Package progress provides a lightweight tracker that keeps aggregated
// execution counters (nodes run, retries, failed branches, …) for a single
// flow run.  The tracker instance lives in the run context – every component
// that receives the context can update the counters via the Delta helper
// without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"

	"github.com/viant/stepflow/internal/clock"
)

// Delta represents an incremental counter change emitted by the engine while
// it walks a graph.  The fields are signed and therefore can be either
// positive (increment) or negative (decrement).
type Delta struct {
	Nodes     int
	Completed int
	Failed    int
	Retries   int
	Branches  int
}

// Progress keeps aggregated counters for a flow run and all its nested
// flows.  It is safe for concurrent use, which matters for parallel batch
// branches updating the same tracker.
type Progress struct {
	// Identification – informative only, filled when the run starts.
	RunID     string
	Flow      string
	StartedAt time.Time

	// Counters – modified via Update().
	Nodes     int
	Completed int
	Failed    int
	Retries   int
	Branches  int

	// mu stays unexported and is never part of a snapshot, so copies handed
	// to callers carry plain counters only.
	mu       sync.Mutex
	onChange func(Progress)
}

// Update applies the supplied delta to the tracker.  It is safe to call from
// multiple goroutines.  If an onChange callback has been registered it will
// be invoked with a copy of the updated tracker outside the critical section
// so that the callback can perform slow operations (e.g. JSON encoding, I/O)
// without blocking engine internals.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mu.Lock()

	p.Nodes += d.Nodes
	p.Completed += d.Completed
	p.Failed += d.Failed
	p.Retries += d.Retries
	p.Branches += d.Branches

	snapshot := p.snapshot()
	cb := p.onChange

	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// snapshot builds a field-by-field copy of the counters; the caller must
// hold mu.
func (p *Progress) snapshot() Progress {
	return Progress{
		RunID:     p.RunID,
		Flow:      p.Flow,
		StartedAt: p.StartedAt,
		Nodes:     p.Nodes,
		Completed: p.Completed,
		Failed:    p.Failed,
		Retries:   p.Retries,
		Branches:  p.Branches,
	}
}

// Snapshot returns a copy of the tracker suitable for read-only inspection.
func (p *Progress) Snapshot() Progress {
	if p == nil {
		return Progress{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// OnChange registers a callback that is invoked after every successful
// Update.  Passing nil disables the callback.  Only one callback can be
// active; subsequent calls overwrite the previous value.
func (p *Progress) OnChange(cb func(Progress)) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.onChange = cb
	p.mu.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithNewTracker creates a new Progress tracker, embeds it in a derived
// context and returns both.  The caller may optionally pass an onChange
// callback that will be invoked after every counter update.
func WithNewTracker(ctx context.Context, runID, flow string, onChange func(Progress)) (context.Context, *Progress) {
	if ctx == nil {
		ctx = context.Background()
	}
	tracker := &Progress{
		RunID:     runID,
		Flow:      flow,
		StartedAt: clock.Now(),
		onChange:  onChange,
	}
	return context.WithValue(ctx, trackerKey, tracker), tracker
}

// FromContext extracts the Progress tracker from ctx.  The second return
// value is false when the context carries no tracker.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tracker, ok := ctx.Value(trackerKey).(*Progress)
	return tracker, ok
}

// GetSnapshot is a convenience wrapper that combines FromContext and
// Snapshot.  The boolean return value is false when the context does not
// carry a tracker.
func GetSnapshot(ctx context.Context) (Progress, bool) {
	if tracker, ok := FromContext(ctx); ok {
		return tracker.Snapshot(), true
	}
	return Progress{}, false
}

// UpdateCtx is a helper that looks up the tracker in ctx (if any) and
// applies the supplied delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tracker, ok := FromContext(ctx); ok {
		tracker.Update(d)
	}
}
