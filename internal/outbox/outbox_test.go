package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutbox(size int) *Outbox {
	o := New(size, time.Second)
	o.initial = time.Millisecond
	return o
}

func TestOutbox_RunsJobsInOrder(t *testing.T) {
	o := newTestOutbox(8)
	o.Start(context.Background())

	var mu sync.Mutex
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		require.True(t, o.Enqueue("job", func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, i)
			return nil
		}))
	}
	o.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, Stats{Done: 5}, o.Stats())
}

func TestOutbox_RetriesTransientFailures(t *testing.T) {
	o := newTestOutbox(1)
	o.Start(context.Background())

	var calls atomic.Int32
	o.Enqueue("flaky", func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	o.Close()

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, int64(1), o.Stats().Done)
}

func TestOutbox_PermanentErrorStopsRetrying(t *testing.T) {
	o := newTestOutbox(1)
	o.Start(context.Background())

	var calls atomic.Int32
	o.Enqueue("broken", func(context.Context) error {
		calls.Add(1)
		return Permanent(errors.New("constraint failed"))
	})
	o.Close()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int64(1), o.Stats().Failed)
}

func TestOutbox_GivesUpAfterMaxElapsed(t *testing.T) {
	o := New(1, 20*time.Millisecond)
	o.initial = time.Millisecond
	o.Start(context.Background())

	o.Enqueue("down", func(context.Context) error { return errors.New("disk gone") })
	o.Close()

	assert.Equal(t, int64(1), o.Stats().Failed)
}

func TestOutbox_FullQueueDrops(t *testing.T) {
	o := newTestOutbox(1)
	// No worker yet: the first job fills the buffer.
	require.True(t, o.Enqueue("a", func(context.Context) error { return nil }))
	assert.False(t, o.Enqueue("b", func(context.Context) error { return nil }))

	o.Start(context.Background())
	o.Close()

	assert.Equal(t, Stats{Done: 1, Dropped: 1}, o.Stats())
}

func TestOutbox_EnqueueAfterClose(t *testing.T) {
	o := newTestOutbox(1)
	o.Start(context.Background())
	o.Close()
	o.Close()

	assert.False(t, o.Enqueue("late", func(context.Context) error { return nil }))
}
