// Package queue moves real-time event payloads from the services that
// produce them to the processes that fan them out.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
)

// TopicRealtimeEvents carries encoded realtime envelopes.
const TopicRealtimeEvents = "realtime_events"

const defaultMaxRetries = 3

var ErrClosed = errors.New("queue closed")

// Handler processes one payload. A non-nil error asks for a retry.
type Handler func(ctx context.Context, payload []byte) error

// Queue interface
type Queue interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(topic string, handler Handler) error
	Close() error
}

// job wraps a payload with retry info
type job struct {
	payload    []byte
	retryCount int
}

type subscriber struct {
	handler Handler
	jobs    chan job
}

// InMemoryQueue delivers every payload to each subscriber of its topic, in
// publish order per subscriber, retrying failed handlers with backoff.
type InMemoryQueue struct {
	mu          sync.Mutex
	subscribers map[string][]*subscriber
	closed      bool
	wg          sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	MaxRetries int
	// Backoff returns the wait before retry n (1-based).
	Backoff func(n int) time.Duration
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &InMemoryQueue{
		subscribers: make(map[string][]*subscriber),
		ctx:         ctx,
		cancel:      cancel,
		MaxRetries:  defaultMaxRetries,
		Backoff: func(n int) time.Duration {
			return time.Duration(n*500) * time.Millisecond
		},
	}
}

// Publish hands payload to every subscriber of topic. It fails when the topic
// has no subscribers.
func (q *InMemoryQueue) Publish(ctx context.Context, topic string, payload []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	subs := q.subscribers[topic]
	q.mu.Unlock()

	if len(subs) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, s := range subs {
		select {
		case s.jobs <- job{payload: payload}:
		case <-ctx.Done():
			return ctx.Err()
		case <-q.ctx.Done():
			return ErrClosed
		}
	}
	return nil
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler Handler) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}

	s := &subscriber{handler: handler, jobs: make(chan job, 256)}
	q.subscribers[topic] = append(q.subscribers[topic], s)

	q.wg.Add(1)
	go q.consume(topic, s)
	return nil
}

func (q *InMemoryQueue) consume(topic string, s *subscriber) {
	defer q.wg.Done()
	for {
		select {
		case j := <-s.jobs:
			q.process(topic, s.handler, j)
		case <-q.ctx.Done():
			return
		}
	}
}

// process handles retries and errors
func (q *InMemoryQueue) process(topic string, handler Handler, j job) {
	for {
		err := handler(q.ctx, j.payload)
		if err == nil {
			return
		}

		j.retryCount++
		if j.retryCount > q.MaxRetries {
			logging.Error().Err(err).Str("topic", topic).Int("attempts", j.retryCount).Msg("job permanently failed")
			return
		}
		logging.Warn().Err(err).Str("topic", topic).Int("attempt", j.retryCount).Int("max_retries", q.MaxRetries).Msg("job failed, retrying")

		select {
		case <-time.After(q.Backoff(j.retryCount)):
		case <-q.ctx.Done():
			return
		}
	}
}

// Close stops every subscriber and waits for in-flight handlers.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
