package execution

import (
	"context"
	"errors"
	"sync"

	"github.com/viant/stepflow/model/state"
	"github.com/viant/stepflow/progress"
)

// BatchPrepFunc derives the parameter sets a batch flow traverses its graph
// with, one traversal per set.
type BatchPrepFunc func(ctx context.Context, session *Session, params map[string]interface{}) ([]map[string]interface{}, error)

// BatchFlow runs its graph once per parameter set, sequentially and in order.
// Each traversal sees the flow parameters merged with the set, the set
// winning on conflict.
type BatchFlow struct {
	Flow
	prepBatch BatchPrepFunc
}

// NewBatchFlow creates a new batch flow with the given name and start node
func NewBatchFlow(name string, start Node) *BatchFlow {
	return &BatchFlow{Flow: *NewFlow(name, start)}
}

// WithPrepBatch sets the hook producing the parameter sets
func (b *BatchFlow) WithPrepBatch(fn BatchPrepFunc) *BatchFlow {
	b.prepBatch = fn
	return b
}

// WithPost sets the flow's finish hook; it receives the parameter sets as
// the prep argument.
func (b *BatchFlow) WithPost(fn PostFunc) *BatchFlow {
	b.post = fn
	return b
}

// WithListener sets the diagnostic listener
func (b *BatchFlow) WithListener(listener Listener) *BatchFlow {
	b.listener = listener
	return b
}

// PrepBatch invokes the batch prepare hook; a nil hook yields no sets.
func (b *BatchFlow) PrepBatch(ctx context.Context, session *Session) ([]map[string]interface{}, error) {
	if b.prepBatch == nil {
		return nil, nil
	}
	return b.prepBatch(ctx, session, b.params)
}

// Run executes every traversal standalone
func (b *BatchFlow) Run(ctx context.Context, session *Session) (string, error) {
	b.warnStandalone()
	return b.run(ctx, session)
}

func (b *BatchFlow) run(ctx context.Context, session *Session) (string, error) {
	return b.trace(ctx, "batchFlow."+b.name, func(ctx context.Context) (string, error) {
		sets, err := b.PrepBatch(ctx, session)
		if err != nil {
			return "", err
		}
		for _, set := range sets {
			params := state.MergeMaps(b.params, set)
			if err := b.Orchestrate(ctx, session, params); err != nil {
				return "", err
			}
		}
		return b.Post(ctx, session, sets, nil)
	})
}

// Clone returns a per-run copy of the batch flow
func (b *BatchFlow) Clone() Node {
	clone := *b
	clone.Base = b.cloneBase()
	return &clone
}

// ParallelBatchFlow runs one graph traversal per parameter set concurrently.
// All traversals are joined before the flow settles; by default the first
// failure in set order is reported, WithErrorCollection aggregates every
// failure instead. MaxConcurrent bounds the number of in-flight traversals.
type ParallelBatchFlow struct {
	Flow
	prepBatch     BatchPrepFunc
	maxConcurrent int
	collectErrors bool
}

// NewParallelBatchFlow creates a new parallel batch flow with the given name
// and start node
func NewParallelBatchFlow(name string, start Node) *ParallelBatchFlow {
	return &ParallelBatchFlow{Flow: *NewFlow(name, start)}
}

// WithPrepBatch sets the hook producing the parameter sets
func (p *ParallelBatchFlow) WithPrepBatch(fn BatchPrepFunc) *ParallelBatchFlow {
	p.prepBatch = fn
	return p
}

// WithPost sets the flow's finish hook
func (p *ParallelBatchFlow) WithPost(fn PostFunc) *ParallelBatchFlow {
	p.post = fn
	return p
}

// WithListener sets the diagnostic listener
func (p *ParallelBatchFlow) WithListener(listener Listener) *ParallelBatchFlow {
	p.listener = listener
	return p
}

// WithMaxConcurrent bounds the number of concurrent traversals; zero or
// negative means unbounded.
func (p *ParallelBatchFlow) WithMaxConcurrent(limit int) *ParallelBatchFlow {
	p.maxConcurrent = limit
	return p
}

// WithErrorCollection switches failure reporting from first-in-set-order to
// an aggregate of every traversal failure.
func (p *ParallelBatchFlow) WithErrorCollection(collect bool) *ParallelBatchFlow {
	p.collectErrors = collect
	return p
}

// PrepBatch invokes the batch prepare hook; a nil hook yields no sets.
func (p *ParallelBatchFlow) PrepBatch(ctx context.Context, session *Session) ([]map[string]interface{}, error) {
	if p.prepBatch == nil {
		return nil, nil
	}
	return p.prepBatch(ctx, session, p.params)
}

// Run executes every traversal standalone
func (p *ParallelBatchFlow) Run(ctx context.Context, session *Session) (string, error) {
	p.warnStandalone()
	return p.run(ctx, session)
}

func (p *ParallelBatchFlow) run(ctx context.Context, session *Session) (string, error) {
	return p.trace(ctx, "parallelBatchFlow."+p.name, func(ctx context.Context) (string, error) {
		sets, err := p.PrepBatch(ctx, session)
		if err != nil {
			return "", err
		}
		errs := make([]error, len(sets))
		var limiter chan struct{}
		if p.maxConcurrent > 0 {
			limiter = make(chan struct{}, p.maxConcurrent)
		}
		var wg sync.WaitGroup
		for i := range sets {
			wg.Add(1)
			go func(index int, set map[string]interface{}) {
				defer wg.Done()
				if limiter != nil {
					limiter <- struct{}{}
					defer func() { <-limiter }()
				}
				progress.UpdateCtx(ctx, progress.Delta{Branches: 1})
				params := state.MergeMaps(p.params, set)
				errs[index] = p.Orchestrate(ctx, session, params)
			}(i, sets[i])
		}
		wg.Wait()
		if err := p.settle(errs); err != nil {
			return "", err
		}
		return p.Post(ctx, session, sets, nil)
	})
}

// settle turns per-traversal outcomes into the flow result once every
// traversal has joined.
func (p *ParallelBatchFlow) settle(errs []error) error {
	if p.collectErrors {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a per-run copy of the parallel batch flow
func (p *ParallelBatchFlow) Clone() Node {
	clone := *p
	clone.Base = p.cloneBase()
	return &clone
}
