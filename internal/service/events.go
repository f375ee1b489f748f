package service

import (
	"context"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/metrics"
	"github.com/unclebandit/adsadmin-backend/internal/queue"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
)

// EventPublisher is the part of queue.Queue the services need.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// IDInput is the input of getById and delete.
type IDInput struct {
	ID string `json:"id" validate:"required"`
}

// publishUpdate announces a mutation on the realtime topic. Failures are
// logged and counted; the mutation has already succeeded.
func publishUpdate(ctx context.Context, pub EventPublisher, t realtime.EventType, action, id string, data any) {
	if pub == nil {
		return
	}
	log := logging.With().Str("event", string(t)).Str("action", action).Str("id", id).Logger()

	env, err := realtime.NewUpdate(t, action, id, data)
	if err == nil {
		var payload []byte
		payload, err = realtime.Encode(env)
		if err == nil {
			err = pub.Publish(ctx, queue.TopicRealtimeEvents, payload)
		}
	}
	if err != nil {
		metrics.EventPublishFailures.Inc()
		log.Warn().Err(err).Msg("failed to publish realtime event")
		return
	}
	metrics.RealtimeEventsTotal.WithLabelValues(string(t), "service").Inc()
	log.Debug().Msg("realtime event published")
}
