package execution

import (
	"context"
	"fmt"

	"github.com/viant/stepflow/model/state"
	"github.com/viant/stepflow/model/types"
)

// Flow walks a successor-table graph from a designated start node. A flow is
// itself a Node, so it can be wired into an outer flow's successor table to
// form hierarchical graphs.
type Flow struct {
	Base
	start Node
	prep  PrepFunc
	post  PostFunc
}

// NewFlow creates a new flow with the given name and start node
func NewFlow(name string, start Node) *Flow {
	return &Flow{Base: newBase(name), start: start}
}

// Start returns the flow's start node
func (f *Flow) Start() Node {
	return f.start
}

// WithPrep sets the flow's own prepare hook
func (f *Flow) WithPrep(fn PrepFunc) *Flow {
	f.prep = fn
	return f
}

// WithPost sets the flow's own finish hook. The hook always receives a nil
// exec result - produced values travel through the session, never through
// the flow's execute phase.
func (f *Flow) WithPost(fn PostFunc) *Flow {
	f.post = fn
	return f
}

// WithListener sets the diagnostic listener
func (f *Flow) WithListener(listener Listener) *Flow {
	f.listener = listener
	return f
}

// Prep invokes the flow's prepare hook; a nil hook yields nil.
func (f *Flow) Prep(ctx context.Context, session *Session) (interface{}, error) {
	if f.prep == nil {
		return nil, nil
	}
	return f.prep(ctx, session, f.params)
}

// Exec reports a usage error: a flow delegates all work to its graph and
// must never be executed as if it were a plain task.
func (f *Flow) Exec(ctx context.Context, prep interface{}) (interface{}, error) {
	return nil, types.NewUsageError("flow %q cannot execute directly - run it, or wire it into an outer flow", f.name)
}

// Post invokes the flow's finish hook; a nil hook or empty label yields
// DefaultOutcome.
func (f *Flow) Post(ctx context.Context, session *Session, prep, exec interface{}) (string, error) {
	if f.post == nil {
		return DefaultOutcome, nil
	}
	outcome, err := f.post(ctx, session, prep, exec)
	if err != nil {
		return "", err
	}
	if outcome == "" {
		outcome = DefaultOutcome
	}
	return outcome, nil
}

// Run executes the whole graph: the flow's prepare hook, the traversal, then
// the flow's finish hook with a nil exec result.
func (f *Flow) Run(ctx context.Context, session *Session) (string, error) {
	f.warnStandalone()
	return f.run(ctx, session)
}

func (f *Flow) run(ctx context.Context, session *Session) (string, error) {
	return f.trace(ctx, "flow."+f.name, func(ctx context.Context) (string, error) {
		prep, err := f.Prep(ctx, session)
		if err != nil {
			return "", err
		}
		if err := f.Orchestrate(ctx, session, nil); err != nil {
			return "", err
		}
		return f.Post(ctx, session, prep, nil)
	})
}

// Orchestrate drives one traversal: it clones the start node, pushes the
// effective parameter set (the argument, else the flow's own parameters)
// and advances along successor edges until an outcome has no registered
// successor. Clones isolate per-run node state, so concurrent traversals of
// the same graph never share retry counters or parameters.
func (f *Flow) Orchestrate(ctx context.Context, session *Session, params map[string]interface{}) error {
	if f.start == nil {
		return types.NewUsageError("flow %q has no start node", f.name)
	}
	effective := params
	if effective == nil {
		effective = state.CloneMap(f.params)
	}
	current := f.start.Clone()
	for current != nil {
		current.SetParams(effective)
		outcome, err := current.run(ctx, session)
		if err != nil {
			return err
		}
		next := current.Successor(outcome)
		if next == nil {
			// normal termination; diagnose only when edges exist but
			// none matched
			if registered := current.Outcomes(); len(registered) > 0 {
				f.notify(Event{
					Kind:    EventEnd,
					Node:    current.Name(),
					Outcome: outcome,
					Message: fmt.Sprintf("flow %q ends: outcome %q is not registered on %q (registered: %v)", f.name, outcome, current.Name(), registered),
				})
			}
			break
		}
		current = next.Clone()
	}
	return nil
}

// Clone returns a per-run copy of the flow; the start node and graph are
// shared, per-traversal isolation happens inside Orchestrate.
func (f *Flow) Clone() Node {
	clone := *f
	clone.Base = f.cloneBase()
	return &clone
}
