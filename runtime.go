package stepflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/viant/stepflow/execution"
	"github.com/viant/stepflow/model"
	"github.com/viant/stepflow/policy"
	"github.com/viant/stepflow/progress"
)

// Runtime runs flows built by the service. Each run gets its own session,
// progress tracker and, when configured, a run-wide default retry policy.
type Runtime struct {
	service  *Service
	onChange func(progress.Progress)
}

// OnProgress registers a callback invoked after every progress counter
// update of subsequent runs.
func (r *Runtime) OnProgress(callback func(progress.Progress)) {
	r.onChange = callback
}

// LoadFlow loads a graph definition and builds an executable flow out of it
func (r *Runtime) LoadFlow(ctx context.Context, location string) (*execution.Flow, error) {
	graph, err := r.service.Load(ctx, location)
	if err != nil {
		return nil, err
	}
	return r.service.Build(graph)
}

// BuildFlow builds an executable flow from an in-memory graph definition
func (r *Runtime) BuildFlow(graph *model.Graph) (*execution.Flow, error) {
	return r.service.Build(graph)
}

// Run executes the flow against a fresh session seeded with initialState and
// returns the session for inspection. Any node variant runs here - plain
// flows as well as batch and parallel batch flows. The returned progress
// snapshot aggregates counters across the whole run, nested flows included.
func (r *Runtime) Run(ctx context.Context, flow execution.Node, initialState map[string]interface{}) (*execution.Session, progress.Progress, error) {
	session := execution.NewSession(execution.WithState(initialState))
	ctx, tracker := progress.WithNewTracker(ctx, uuid.New().String(), flow.Name(), r.onChange)
	if retry := r.defaultRetry(); retry != nil {
		ctx = policy.WithRetry(ctx, retry)
	}
	_, err := flow.Run(ctx, session)
	return session, tracker.Snapshot(), err
}

// defaultRetry derives the run-wide retry policy from the configuration;
// a single-attempt configuration yields nil so that tasks keep the zero-cost
// default.
func (r *Runtime) defaultRetry() *policy.Retry {
	retryConfig := r.service.config.Retry
	if retryConfig.MaxAttempts <= 1 {
		return nil
	}
	interval := time.Duration(0)
	if retryConfig.Interval != "" {
		interval, _ = time.ParseDuration(retryConfig.Interval)
	}
	return policy.New(retryConfig.MaxAttempts, interval)
}
