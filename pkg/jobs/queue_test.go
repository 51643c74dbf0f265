package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueEnqueueBeforeStart(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "1"}))
}

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	select {
	case id := <-done:
		assert.Equal(t, "job-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesThenReportsExhaustion(t *testing.T) {
	var calls int32
	exhausted := make(chan Job, 1)
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{
		MaxRetries: 2,
		RetryDelay: 5 * time.Millisecond,
		OnExhausted: func(_ context.Context, job Job, err error) {
			exhausted <- job
		},
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "job-1"}))
	select {
	case job := <-exhausted:
		assert.Equal(t, 3, job.Attempt)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("exhaustion callback not invoked")
	}
}
