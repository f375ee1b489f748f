package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastQueue(t *testing.T) *InMemoryQueue {
	t.Helper()
	q := NewInMemoryQueue()
	q.Backoff = func(int) time.Duration { return time.Millisecond }
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func TestPublishWithoutSubscribersFails(t *testing.T) {
	q := fastQueue(t)
	err := q.Publish(context.Background(), TopicRealtimeEvents, []byte(`{}`))
	assert.Error(t, err)
}

func TestDeliveryPreservesOrder(t *testing.T) {
	q := fastQueue(t)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	require.NoError(t, q.Subscribe(TopicRealtimeEvents, func(_ context.Context, p []byte) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, string(p))
		if len(got) == 3 {
			close(done)
		}
		return nil
	}))

	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, q.Publish(context.Background(), TopicRealtimeEvents, []byte(p)))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFailedJobIsRetried(t *testing.T) {
	q := fastQueue(t)

	var mu sync.Mutex
	attempts := 0
	done := make(chan struct{})
	require.NoError(t, q.Subscribe("t", func(context.Context, []byte) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		close(done)
		return nil
	}))
	require.NoError(t, q.Publish(context.Background(), "t", []byte("x")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestJobGivesUpAfterMaxRetries(t *testing.T) {
	q := fastQueue(t)
	q.MaxRetries = 2

	var mu sync.Mutex
	attempts := 0
	require.NoError(t, q.Subscribe("t", func(context.Context, []byte) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return errors.New("permanent")
	}))
	require.NoError(t, q.Publish(context.Background(), "t", []byte("x")))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 3
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, attempts)
}

func TestClosedQueueRejects(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Subscribe("t", func(context.Context, []byte) error { return nil }), ErrClosed)
	assert.ErrorIs(t, q.Publish(context.Background(), "t", nil), ErrClosed)
	assert.NoError(t, q.Close())
}

func TestRetryCountHeader(t *testing.T) {
	assert.Equal(t, 0, retryCount(nil))
	assert.Equal(t, 2, retryCount(amqp.Table{retryHeader: int32(2)}))
	assert.Equal(t, 3, retryCount(amqp.Table{retryHeader: int64(3)}))
	assert.Equal(t, 0, retryCount(amqp.Table{retryHeader: "x"}))
}
