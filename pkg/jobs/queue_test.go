package jobs

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

func TestQueueRequiresStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	ok, err := q.Enqueue(Job{ID: "a"})
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestQueueProcessesAndRetries(t *testing.T) {
	var calls int32
	done := make(chan struct{})
	q := NewQueue("test", func(_ context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("boom")
		}
		close(done)
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	ok, err := q.Enqueue(Job{ID: "warm:u1", Type: "stats-warmup"})
	require.NoError(t, err)
	assert.True(t, ok)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to success")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueCoalescesPendingJobs(t *testing.T) {
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	var first sync.Once
	q := NewQueue("test", func(_ context.Context, job Job) error {
		first.Do(func() {
			wg.Done()
			<-release
		})
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())
	defer q.Stop()

	_, err := q.Enqueue(Job{ID: "busy"})
	require.NoError(t, err)
	wg.Wait()

	ok, err := q.Enqueue(Job{ID: "warm:u1"})
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = q.Enqueue(Job{ID: "warm:u1"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, q.Pending())

	close(release)
}
