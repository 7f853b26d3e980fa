package execution

import (
	"context"
	"sort"

	"github.com/viant/stepflow/model/state"
	"github.com/viant/stepflow/model/types"
	"github.com/viant/stepflow/progress"
	"github.com/viant/stepflow/tracing"
)

// DefaultOutcome is the label used when a finish hook returns no outcome and
// the label used by Next when no outcome is supplied.
const DefaultOutcome = "default"

// Hook function types - the only extension points of the engine. A nil hook
// is a pass-through: Prep yields nil, Exec echoes nil, Post yields the
// default outcome.
type (
	// PrepFunc reads shared state and the node parameters and derives the
	// input of the execute phase.
	PrepFunc func(ctx context.Context, session *Session, params map[string]interface{}) (interface{}, error)

	// ExecFunc performs the node's primary work. It must not write shared
	// state so that retries remain safe to repeat.
	ExecFunc func(ctx context.Context, prep interface{}) (interface{}, error)

	// PostFunc writes results into shared state and returns the outcome
	// label selecting the next node; an empty label means DefaultOutcome.
	PostFunc func(ctx context.Context, session *Session, prep, exec interface{}) (string, error)
)

// Node is a single schedulable step of a task graph. The unexported run
// method closes the implementation set to this package; user behaviour is
// supplied through hooks, not new Node types.
type Node interface {
	// Name returns the node name, informative only.
	Name() string

	// SetParams replaces the node parameters wholesale before a run.
	SetParams(params map[string]interface{})

	// Params returns the current node parameters.
	Params() map[string]interface{}

	// Next registers next as the successor for the supplied outcome labels
	// (DefaultOutcome when none given). Registering a label twice is a
	// usage error - the topology never changes silently.
	Next(next Node, outcomes ...string) error

	// Successor returns the registered successor for outcome, or nil.
	Successor(outcome string) Node

	// Outcomes lists the registered outcome labels.
	Outcomes() []string

	// Clone returns a per-run copy: parameters and retry state are
	// duplicated, the successor table reference is shared.
	Clone() Node

	// Run executes the node standalone. A standalone run never consults
	// the successor table.
	Run(ctx context.Context, session *Session) (string, error)

	run(ctx context.Context, session *Session) (string, error)
}

// Base carries the state common to every node variant: name, parameters,
// successor table and diagnostic listener. The successor table is immutable
// once a run begins and is shared by clones.
type Base struct {
	name       string
	params     map[string]interface{}
	successors map[string]Node
	listener   Listener
}

func newBase(name string) Base {
	return Base{name: name}
}

// Name returns the node name
func (b *Base) Name() string {
	return b.name
}

// SetParams replaces the node parameters
func (b *Base) SetParams(params map[string]interface{}) {
	b.params = params
}

// Params returns the node parameters
func (b *Base) Params() map[string]interface{} {
	return b.params
}

// Next registers next as successor for the supplied outcomes
func (b *Base) Next(next Node, outcomes ...string) error {
	if next == nil {
		return types.NewUsageError("node %q: successor is nil", b.name)
	}
	if len(outcomes) == 0 {
		outcomes = []string{DefaultOutcome}
	}
	if b.successors == nil {
		b.successors = make(map[string]Node)
	}
	for _, outcome := range outcomes {
		if outcome == "" {
			outcome = DefaultOutcome
		}
		if _, exists := b.successors[outcome]; exists {
			return types.NewUsageError("node %q: successor for outcome %q already registered", b.name, outcome)
		}
		b.successors[outcome] = next
	}
	return nil
}

// Successor returns the successor registered for outcome or nil
func (b *Base) Successor(outcome string) Node {
	return b.successors[outcome]
}

// Outcomes returns the registered outcome labels, sorted
func (b *Base) Outcomes() []string {
	result := make([]string, 0, len(b.successors))
	for outcome := range b.successors {
		result = append(result, outcome)
	}
	sort.Strings(result)
	return result
}

func (b *Base) hasSuccessors() bool {
	return len(b.successors) > 0
}

func (b *Base) notify(event Event) {
	if b.listener != nil {
		b.listener(event)
	}
}

// cloneBase duplicates per-run state (parameters) and shares the successor
// table, which is read-only during runs.
func (b *Base) cloneBase() Base {
	return Base{
		name:       b.name,
		params:     state.CloneMap(b.params),
		successors: b.successors,
		listener:   b.listener,
	}
}

// trace wraps one node run with a span, progress accounting and listener
// notification.
func (b *Base) trace(ctx context.Context, span string, fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, sp := tracing.StartSpan(ctx, span, "INTERNAL")
	outcome, err := fn(ctx)
	delta := progress.Delta{Nodes: 1, Completed: 1}
	if err != nil {
		delta = progress.Delta{Nodes: 1, Failed: 1}
	}
	progress.UpdateCtx(ctx, delta)
	b.notify(Event{Kind: EventNode, Node: b.name, Outcome: outcome, Err: err})
	sp.WithAttributes(map[string]string{"node": b.name, "outcome": outcome})
	tracing.EndSpan(sp, err)
	return outcome, err
}
