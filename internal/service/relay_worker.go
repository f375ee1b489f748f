package service

import (
	"context"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/queue"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
)

// Sink receives each relayed envelope, e.g. Hub.Relay or RedisPublisher.Publish.
type Sink func(ctx context.Context, payload []byte) error

// RelayWorker forwards realtime envelopes from the event queue to a sink.
type RelayWorker struct {
	Sink Sink
}

func NewRelayWorker(sink Sink) *RelayWorker {
	return &RelayWorker{Sink: sink}
}

// Start subscribes the worker to the realtime topic of q.
func (w *RelayWorker) Start(q queue.Queue) error {
	return q.Subscribe(queue.TopicRealtimeEvents, w.Handle)
}

// Handle drops payloads that are not envelopes and returns sink errors so
// the queue retries them.
func (w *RelayWorker) Handle(ctx context.Context, payload []byte) error {
	env, err := realtime.Decode(payload)
	if err != nil {
		logging.Warn().Err(err).Msg("relay dropping malformed payload")
		return nil
	}
	if err := w.Sink(ctx, payload); err != nil {
		logging.Warn().Err(err).Str("event", string(env.Type())).Msg("relay sink failed")
		return err
	}
	return nil
}
