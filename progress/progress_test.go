package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_Update(t *testing.T) {
	ctx, tracker := WithNewTracker(context.Background(), "run-1", "pipeline", nil)
	UpdateCtx(ctx, Delta{Nodes: 1, Completed: 1})
	UpdateCtx(ctx, Delta{Nodes: 1, Failed: 1, Retries: 2})

	snap := tracker.Snapshot()
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, "pipeline", snap.Flow)
	assert.Equal(t, 2, snap.Nodes)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 2, snap.Retries)
}

func TestProgress_SnapshotIsDetached(t *testing.T) {
	_, tracker := WithNewTracker(context.Background(), "run-1", "pipeline", nil)
	tracker.Update(Delta{Nodes: 1, Completed: 1})

	snap := tracker.Snapshot()

	// a returned snapshot must stay fully usable; its lock state is its own
	done := make(chan Progress, 1)
	go func() {
		snap.Update(Delta{Nodes: 1})
		done <- snap.Snapshot()
	}()
	select {
	case again := <-done:
		assert.Equal(t, 2, again.Nodes)
	case <-time.After(2 * time.Second):
		t.Fatal("method call on a returned snapshot blocked")
	}

	// mutating the detached copy leaves the tracker untouched
	assert.Equal(t, 1, tracker.Snapshot().Nodes)
}

func TestProgress_OnChangeReceivesUsableCopy(t *testing.T) {
	var got []Progress
	_, tracker := WithNewTracker(context.Background(), "run-1", "pipeline", func(p Progress) {
		// callbacks may inspect the copy with its own methods
		got = append(got, p.Snapshot())
	})
	tracker.Update(Delta{Nodes: 1})
	tracker.Update(Delta{Branches: 1})

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Nodes)
	assert.Equal(t, 1, got[1].Branches)
}

func TestProgress_ConcurrentUpdates(t *testing.T) {
	_, tracker := WithNewTracker(context.Background(), "run-1", "pipeline", nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Update(Delta{Nodes: 1})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1000, tracker.Snapshot().Nodes)
}

func TestProgress_NilSafety(t *testing.T) {
	var tracker *Progress
	tracker.Update(Delta{Nodes: 1})
	tracker.OnChange(nil)
	assert.Equal(t, Progress{}, tracker.Snapshot())

	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	_, ok = GetSnapshot(context.Background())
	assert.False(t, ok)
}
