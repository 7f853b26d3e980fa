package execution

import (
	"context"

	"github.com/viant/stepflow/internal/clock"
	"github.com/viant/stepflow/model/types"
	"github.com/viant/stepflow/policy"
	"github.com/viant/stepflow/progress"
)

// Task is the plain unit of work: three lifecycle hooks and an optional
// retry policy around the execute phase.
type Task struct {
	Base
	prep  PrepFunc
	exec  ExecFunc
	post  PostFunc
	retry *policy.Retry

	// attempt is the current 1-based attempt; per-run state, reset on Clone.
	attempt int
}

// NewTask creates a new task with the given name
func NewTask(name string) *Task {
	return &Task{Base: newBase(name)}
}

// WithPrep sets the prepare hook
func (t *Task) WithPrep(fn PrepFunc) *Task {
	t.prep = fn
	return t
}

// WithExec sets the execute hook
func (t *Task) WithExec(fn ExecFunc) *Task {
	t.exec = fn
	return t
}

// WithPost sets the finish hook
func (t *Task) WithPost(fn PostFunc) *Task {
	t.post = fn
	return t
}

// WithRetry sets the retry policy applied to the execute hook
func (t *Task) WithRetry(retry *policy.Retry) *Task {
	t.retry = retry
	return t
}

// WithListener sets the diagnostic listener
func (t *Task) WithListener(listener Listener) *Task {
	t.listener = listener
	return t
}

// SetRetry sets the retry policy; used by builders that assemble tasks from
// declarative definitions.
func (t *Task) SetRetry(retry *policy.Retry) {
	t.retry = retry
}

// Retry returns the retry policy or nil
func (t *Task) Retry() *policy.Retry {
	return t.retry
}

// Attempt returns the current 1-based attempt of the execute phase; zero
// before the first attempt.
func (t *Task) Attempt() int {
	return t.attempt
}

// Prep invokes the prepare hook; a nil hook yields nil.
func (t *Task) Prep(ctx context.Context, session *Session) (interface{}, error) {
	if t.prep == nil {
		return nil, nil
	}
	return t.prep(ctx, session, t.params)
}

// Exec invokes the execute hook once, without retrying; a nil hook yields
// nil.
func (t *Task) Exec(ctx context.Context, prep interface{}) (interface{}, error) {
	if t.exec == nil {
		return nil, nil
	}
	return t.exec(ctx, prep)
}

// Post invokes the finish hook; a nil hook or empty label yields
// DefaultOutcome.
func (t *Task) Post(ctx context.Context, session *Session, prep, exec interface{}) (string, error) {
	if t.post == nil {
		return DefaultOutcome, nil
	}
	outcome, err := t.post(ctx, session, prep, exec)
	if err != nil {
		return "", err
	}
	if outcome == "" {
		outcome = DefaultOutcome
	}
	return outcome, nil
}

// Run executes the task standalone. Registered successors are never
// consulted by a standalone run, which is reported as a diagnostic.
func (t *Task) Run(ctx context.Context, session *Session) (string, error) {
	t.warnStandalone()
	return t.run(ctx, session)
}

func (t *Task) run(ctx context.Context, session *Session) (string, error) {
	return t.trace(ctx, "task."+t.name, func(ctx context.Context) (string, error) {
		prep, err := t.Prep(ctx, session)
		if err != nil {
			return "", err
		}
		exec, err := t.execute(ctx, prep)
		if err != nil {
			return "", err
		}
		return t.Post(ctx, session, prep, exec)
	})
}

// execute drives the execute hook under the retry policy. Without a policy
// (own or context default) the first failure propagates bare; with a policy
// the terminal failure surfaces as MaxRetriesError unless a fallback absorbs
// it. The inter-attempt delay suspends only this branch.
func (t *Task) execute(ctx context.Context, prep interface{}) (interface{}, error) {
	retry := t.retry
	if retry == nil {
		retry = policy.FromContext(ctx)
	}
	attempts := retry.Attempts()
	var lastErr error
	for t.attempt = 1; ; t.attempt++ {
		result, err := t.Exec(ctx, prep)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if t.attempt >= attempts {
			break
		}
		progress.UpdateCtx(ctx, progress.Delta{Retries: 1})
		if sleepErr := clock.Sleep(ctx, retry.Delay()); sleepErr != nil {
			return nil, sleepErr
		}
	}
	if retry == nil {
		return nil, lastErr
	}
	if retry.Fallback != nil {
		return retry.Fallback(ctx, prep, lastErr)
	}
	return nil, types.NewMaxRetriesError(attempts, lastErr)
}

// Clone returns a per-run copy of the task
func (t *Task) Clone() Node {
	clone := *t
	clone.Base = t.cloneBase()
	clone.attempt = 0
	return &clone
}

func (b *Base) warnStandalone() {
	if b.hasSuccessors() {
		b.notify(Event{
			Kind:    EventWarn,
			Node:    b.name,
			Message: "standalone run never consults successors; wire the node into a flow",
		})
	}
}
