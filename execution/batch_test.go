package execution_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/stepflow/execution"
	"github.com/viant/stepflow/policy"
)

func TestBatchTask_SequentialItems(t *testing.T) {
	ctx := context.Background()
	var order []int
	task := execution.NewBatchTask("perItem").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return []interface{}{1, 2, 3}, nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			item := prep.(int)
			order = append(order, item)
			return item * 10, nil
		}).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			session.Set("results", exec)
			return "", nil
		})

	session := execution.NewSession()
	_, err := task.Run(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
	results, _ := session.Get("results")
	assert.Equal(t, []interface{}{10, 20, 30}, results)
}

func TestBatchTask_ItemFailureStopsBatch(t *testing.T) {
	ctx := context.Background()
	var calls int
	task := execution.NewBatchTask("perItem").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return []interface{}{1, 2, 3}, nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			calls++
			if prep.(int) == 2 {
				return nil, errors.New("bad item")
			}
			return nil, nil
		})

	_, err := task.Run(ctx, execution.NewSession())
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestParallelBatchTask_ConcurrentItems(t *testing.T) {
	ctx := context.Background()
	var inFlight, peak int32
	task := execution.NewParallelBatchTask("perItem").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return []interface{}{1, 2, 3, 4}, nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			current := atomic.AddInt32(&inFlight, 1)
			for {
				observed := atomic.LoadInt32(&peak)
				if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return prep.(int) * 10, nil
		}).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			session.Set("results", exec)
			return "", nil
		})

	session := execution.NewSession()
	started := time.Now()
	_, err := task.Run(ctx, session)
	require.NoError(t, err)

	// items overlapped and results keep item order
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
	assert.Less(t, time.Since(started), 4*20*time.Millisecond)
	results, _ := session.Get("results")
	assert.Equal(t, []interface{}{10, 20, 30, 40}, results)
}

func TestParallelBatchTask_RetryCountersAreIsolated(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	attempts := map[int]int{}
	task := execution.NewParallelBatchTask("flakyItems").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return []interface{}{1, 2, 3}, nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			item := prep.(int)
			mu.Lock()
			attempts[item]++
			count := attempts[item]
			mu.Unlock()
			if count < 2 {
				return nil, errors.New("transient")
			}
			return item, nil
		})
	task.SetRetry(policy.New(3, 0))

	_, err := task.Run(ctx, execution.NewSession())
	require.NoError(t, err)
	// every item got its own attempt budget
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 2}, attempts)
}

func batchCounter(name string) *execution.Task {
	return execution.NewTask(name).
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return params, nil
		}).
		WithPost(func(ctx context.Context, session *execution.Session, prep, exec interface{}) (string, error) {
			params := prep.(map[string]interface{})
			session.Append("seen", params["item"])
			return "", nil
		})
}

func TestBatchFlow_SequentialTraversals(t *testing.T) {
	ctx := context.Background()
	flow := execution.NewBatchFlow("fanOut", batchCounter("record")).
		WithPrepBatch(func(ctx context.Context, session *execution.Session, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{
				{"item": "a"},
				{"item": "b"},
				{"item": "c"},
			}, nil
		})

	session := execution.NewSession()
	_, err := flow.Run(ctx, session)
	require.NoError(t, err)
	seen, _ := session.Get("seen")
	assert.Equal(t, []interface{}{"a", "b", "c"}, seen)
}

func TestBatchFlow_MergesFlowParams(t *testing.T) {
	ctx := context.Background()
	var seen []map[string]interface{}
	var mu sync.Mutex
	probe := execution.NewTask("probe").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			mu.Lock()
			seen = append(seen, params)
			mu.Unlock()
			return nil, nil
		})

	flow := execution.NewBatchFlow("fanOut", probe).
		WithPrepBatch(func(ctx context.Context, session *execution.Session, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{
				{"item": 1},
				{"item": 2, "tenant": "override"},
			}, nil
		})
	flow.SetParams(map[string]interface{}{"tenant": "acme"})

	_, err := flow.Run(ctx, execution.NewSession())
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, "acme", seen[0]["tenant"])
	// the parameter set wins over the flow params
	assert.Equal(t, "override", seen[1]["tenant"])
}

func TestParallelBatchFlow_ConcurrentTraversals(t *testing.T) {
	ctx := context.Background()
	slow := execution.NewTask("slow").
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			time.Sleep(30 * time.Millisecond)
			return nil, nil
		})

	flow := execution.NewParallelBatchFlow("fanOut", slow).
		WithPrepBatch(func(ctx context.Context, session *execution.Session, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{}, {}, {}, {}}, nil
		})

	started := time.Now()
	_, err := flow.Run(ctx, execution.NewSession())
	require.NoError(t, err)
	// four branches overlapped instead of running back to back
	assert.Less(t, time.Since(started), 4*30*time.Millisecond)
}

func TestParallelBatchFlow_JoinsAllBranches(t *testing.T) {
	ctx := context.Background()
	var completed int32
	step := execution.NewTask("step").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return params["fail"], nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			if fail, _ := prep.(bool); fail {
				return nil, errors.New("branch failed")
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return nil, nil
		})

	flow := execution.NewParallelBatchFlow("fanOut", step).
		WithPrepBatch(func(ctx context.Context, session *execution.Session, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{
				{"fail": true},
				{"fail": false},
				{"fail": false},
			}, nil
		})

	_, err := flow.Run(ctx, execution.NewSession())
	require.Error(t, err)
	// the failure did not cancel the healthy branches
	assert.Equal(t, int32(2), atomic.LoadInt32(&completed))
}

func TestParallelBatchFlow_ErrorCollection(t *testing.T) {
	ctx := context.Background()
	step := execution.NewTask("step").
		WithPrep(func(ctx context.Context, session *execution.Session, params map[string]interface{}) (interface{}, error) {
			return params["id"], nil
		}).
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			return nil, fmt.Errorf("branch %v failed", prep)
		})

	flow := execution.NewParallelBatchFlow("fanOut", step).
		WithErrorCollection(true).
		WithPrepBatch(func(ctx context.Context, session *execution.Session, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{"id": 1}, {"id": 2}}, nil
		})

	_, err := flow.Run(ctx, execution.NewSession())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch 1 failed")
	assert.Contains(t, err.Error(), "branch 2 failed")
}

func TestParallelBatchFlow_MaxConcurrent(t *testing.T) {
	ctx := context.Background()
	var inFlight, peak int32
	step := execution.NewTask("step").
		WithExec(func(ctx context.Context, prep interface{}) (interface{}, error) {
			current := atomic.AddInt32(&inFlight, 1)
			for {
				observed := atomic.LoadInt32(&peak)
				if current <= observed || atomic.CompareAndSwapInt32(&peak, observed, current) {
					break
				}
			}
			time.Sleep(15 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return nil, nil
		})

	flow := execution.NewParallelBatchFlow("bounded", step).
		WithMaxConcurrent(2).
		WithPrepBatch(func(ctx context.Context, session *execution.Session, params map[string]interface{}) ([]map[string]interface{}, error) {
			return []map[string]interface{}{{}, {}, {}, {}, {}, {}}, nil
		})

	_, err := flow.Run(ctx, execution.NewSession())
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}
