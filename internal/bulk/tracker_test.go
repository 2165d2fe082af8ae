package bulk

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitForCompletion(t *testing.T, tracker *Tracker, id string) Progress {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		progress, err := tracker.Progress(id)
		require.NoError(t, err)
		if !progress.Running {
			return progress
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("bulk operation did not finish in time")
	return Progress{}
}

func TestTrackerRunsAllItems(t *testing.T) {
	tracker := NewTracker(3, zap.NewNop())

	var processed int32
	id, err := tracker.Start("draft", 10, 0, func(ctx context.Context, opID string, i int) error {
		atomic.AddInt32(&processed, 1)
		return nil
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, tracker, id)
	assert.Equal(t, 10, progress.Completed)
	assert.Equal(t, 10, progress.Total)
	assert.Empty(t, progress.Errors)
	assert.Equal(t, int32(10), atomic.LoadInt32(&processed))
}

func TestTrackerCollectsErrorsWithoutAborting(t *testing.T) {
	tracker := NewTracker(2, zap.NewNop())

	id, err := tracker.Start("verify", 4, 1, func(ctx context.Context, opID string, i int) error {
		if i%2 == 1 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)

	progress := waitForCompletion(t, tracker, id)
	assert.Equal(t, 4, progress.Completed)
	assert.Len(t, progress.Errors, 2)
}

func TestTrackerPassesOperationIDToItems(t *testing.T) {
	tracker := NewTracker(2, zap.NewNop())

	ids := make(chan string, 3)
	id, err := tracker.Start("verify", 3, 0, func(ctx context.Context, opID string, i int) error {
		ids <- opID
		tracker.SetCurrent(opID, "busy")
		return nil
	})
	require.NoError(t, err)

	waitForCompletion(t, tracker, id)
	close(ids)
	for got := range ids {
		assert.Equal(t, id, got, "every item sees the operation's own id")
	}
}

func TestTrackerRejectsConcurrentSameKind(t *testing.T) {
	tracker := NewTracker(1, zap.NewNop())

	release := make(chan struct{})
	id, err := tracker.Start("verify", 1, 1, func(ctx context.Context, opID string, i int) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	_, err = tracker.Start("verify", 1, 1, func(ctx context.Context, opID string, i int) error { return nil })
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	// a different kind is fine
	otherID, err := tracker.Start("draft", 1, 1, func(ctx context.Context, opID string, i int) error { return nil })
	require.NoError(t, err)
	waitForCompletion(t, tracker, otherID)

	close(release)
	waitForCompletion(t, tracker, id)

	// once finished the kind frees up again
	_, err = tracker.Start("verify", 1, 1, func(ctx context.Context, opID string, i int) error { return nil })
	assert.NoError(t, err)
}

func TestTrackerStopSkipsQueuedItems(t *testing.T) {
	tracker := NewTracker(1, zap.NewNop())

	started := make(chan struct{})
	release := make(chan struct{})
	var once atomic.Bool

	id, err := tracker.Start("verify", 100, 1, func(ctx context.Context, opID string, i int) error {
		if once.CompareAndSwap(false, true) {
			close(started)
			<-release
		}
		return nil
	})
	require.NoError(t, err)

	<-started
	require.NoError(t, tracker.Stop(id))
	close(release)

	progress := waitForCompletion(t, tracker, id)
	assert.True(t, progress.Stopped)
	assert.Less(t, progress.Completed, 100)
}

func TestTrackerUnknownOperation(t *testing.T) {
	tracker := NewTracker(1, zap.NewNop())

	_, err := tracker.Progress("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, tracker.Stop("nope"), ErrNotFound)
}
