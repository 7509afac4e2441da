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

type outcomeLog struct {
	mu       sync.Mutex
	outcomes []string
}

func (l *outcomeLog) record(outcome string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outcomes = append(l.outcomes, outcome)
}

func (l *outcomeLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.outcomes...)
}

func TestQueueProcessesJobs(t *testing.T) {
	var processed int32
	log := &outcomeLog{}
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 2, OnOutcome: log.record})
	q.Start(context.Background())
	defer q.Stop()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{Type: "noop"}))
	}

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&processed) == 5 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return len(log.snapshot()) == 5 }, time.Second, 5*time.Millisecond)
}

func TestQueueRetriesThenFails(t *testing.T) {
	var attempts int32
	log := &outcomeLog{}
	q := NewQueue("retry", func(ctx context.Context, job Job) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond, OnOutcome: log.record})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{Type: "flaky"}))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&attempts) == 3 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool {
		got := log.snapshot()
		return len(got) == 3 && got[2] == OutcomeFailed
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{OutcomeRetry, OutcomeRetry, OutcomeFailed}, log.snapshot())
}

func TestQueueRejectsWhenNotStarted(t *testing.T) {
	q := NewQueue("idle", func(ctx context.Context, job Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{Type: "x"}))
}

func TestQueueFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("full", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(Job{Type: "a"}))
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Enqueue(Job{Type: "b"})
	}
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestQueueStopRunsBufferedJobs(t *testing.T) {
	var processed int32
	busy := make(chan struct{}, 1)
	release := make(chan struct{})
	q := NewQueue("drain", func(ctx context.Context, job Job) error {
		if job.Type == "slow" {
			busy <- struct{}{}
			<-release
		}
		atomic.AddInt32(&processed, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{Type: "slow"}))
	<-busy
	require.NoError(t, q.Enqueue(Job{Type: "notify"}))
	require.NoError(t, q.Enqueue(Job{Type: "notify"}))

	stopped := make(chan struct{})
	go func() {
		q.Stop()
		close(stopped)
	}()
	close(release)

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not stop")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&processed))
	assert.Error(t, q.Enqueue(Job{Type: "late"}))
}
