package execution

import (
	"context"
	"sync"

	"github.com/viant/toolbox"
)

// BatchTask applies the execute hook to every item of the prepare result,
// sequentially and in order. The retry policy governs each item
// independently; the finish hook receives the collected results.
type BatchTask struct {
	Task
}

// NewBatchTask creates a new batch task with the given name
func NewBatchTask(name string) *BatchTask {
	return &BatchTask{Task: *NewTask(name)}
}

// WithPrep sets the prepare hook
func (t *BatchTask) WithPrep(fn PrepFunc) *BatchTask {
	t.prep = fn
	return t
}

// WithExec sets the per-item execute hook
func (t *BatchTask) WithExec(fn ExecFunc) *BatchTask {
	t.exec = fn
	return t
}

// WithPost sets the finish hook; it receives the collected item results as
// the exec argument.
func (t *BatchTask) WithPost(fn PostFunc) *BatchTask {
	t.post = fn
	return t
}

// Run executes the batch task standalone
func (t *BatchTask) Run(ctx context.Context, session *Session) (string, error) {
	t.warnStandalone()
	return t.run(ctx, session)
}

func (t *BatchTask) run(ctx context.Context, session *Session) (string, error) {
	return t.trace(ctx, "batchTask."+t.name, func(ctx context.Context) (string, error) {
		prep, err := t.Prep(ctx, session)
		if err != nil {
			return "", err
		}
		items := asItems(prep)
		results := make([]interface{}, 0, len(items))
		for _, item := range items {
			result, err := t.execute(ctx, item)
			if err != nil {
				return "", err
			}
			results = append(results, result)
		}
		return t.Post(ctx, session, prep, results)
	})
}

// Clone returns a per-run copy of the batch task
func (t *BatchTask) Clone() Node {
	clone := *t
	clone.Base = t.cloneBase()
	clone.attempt = 0
	return &clone
}

// ParallelBatchTask applies the execute hook to every item of the prepare
// result concurrently. Results keep item order; the first item failure fails
// the task once all items have settled.
type ParallelBatchTask struct {
	Task
}

// NewParallelBatchTask creates a new parallel batch task with the given name
func NewParallelBatchTask(name string) *ParallelBatchTask {
	return &ParallelBatchTask{Task: *NewTask(name)}
}

// WithPrep sets the prepare hook
func (t *ParallelBatchTask) WithPrep(fn PrepFunc) *ParallelBatchTask {
	t.prep = fn
	return t
}

// WithExec sets the per-item execute hook
func (t *ParallelBatchTask) WithExec(fn ExecFunc) *ParallelBatchTask {
	t.exec = fn
	return t
}

// WithPost sets the finish hook
func (t *ParallelBatchTask) WithPost(fn PostFunc) *ParallelBatchTask {
	t.post = fn
	return t
}

// Run executes the parallel batch task standalone
func (t *ParallelBatchTask) Run(ctx context.Context, session *Session) (string, error) {
	t.warnStandalone()
	return t.run(ctx, session)
}

func (t *ParallelBatchTask) run(ctx context.Context, session *Session) (string, error) {
	return t.trace(ctx, "parallelBatchTask."+t.name, func(ctx context.Context) (string, error) {
		prep, err := t.Prep(ctx, session)
		if err != nil {
			return "", err
		}
		items := asItems(prep)
		results := make([]interface{}, len(items))
		errs := make([]error, len(items))
		var wg sync.WaitGroup
		for i := range items {
			wg.Add(1)
			// each item runs on its own shallow copy so that retry
			// counters never race
			go func(index int, item interface{}) {
				defer wg.Done()
				worker := t.Task
				worker.attempt = 0
				results[index], errs[index] = worker.execute(ctx, item)
			}(i, items[i])
		}
		wg.Wait()
		for _, err := range errs {
			if err != nil {
				return "", err
			}
		}
		return t.Post(ctx, session, prep, results)
	})
}

// Clone returns a per-run copy of the parallel batch task
func (t *ParallelBatchTask) Clone() Node {
	clone := *t
	clone.Base = t.cloneBase()
	clone.attempt = 0
	return &clone
}

// asItems normalises a prepare result into a work-item slice; nil yields no
// items, a non-slice value yields a single item.
func asItems(prep interface{}) []interface{} {
	if prep == nil {
		return nil
	}
	if items, ok := prep.([]interface{}); ok {
		return items
	}
	if toolbox.IsSlice(prep) {
		return toolbox.AsSlice(prep)
	}
	return []interface{}{prep}
}
