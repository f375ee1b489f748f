package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
)

const retryHeader = "x-retry-count"

// AMQPQueue maps topics onto durable RabbitMQ queues.
type AMQPQueue struct {
	conn *amqp.Connection

	mu sync.Mutex // guards pub; amqp channels are not safe for concurrent publishing
	pub *amqp.Channel

	declared   map[string]bool
	MaxRetries int
}

// DialAMQP connects to url and opens the publishing channel.
func DialAMQP(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return &AMQPQueue{
		conn:       conn,
		pub:        ch,
		declared:   map[string]bool{},
		MaxRetries: defaultMaxRetries,
	}, nil
}

func declare(ch *amqp.Channel, topic string) error {
	_, err := ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	return nil
}

func (q *AMQPQueue) Publish(ctx context.Context, topic string, payload []byte) error {
	return q.publish(ctx, topic, payload, 0)
}

func (q *AMQPQueue) publish(ctx context.Context, topic string, payload []byte, retry int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.declared[topic] {
		if err := declare(q.pub, topic); err != nil {
			return err
		}
		q.declared[topic] = true
	}

	return q.pub.Publish(
		"",    // default exchange
		topic, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Headers:      amqp.Table{retryHeader: retry},
			Body:         payload,
		},
	)
}

// Subscribe starts consuming topic on its own channel. Failed deliveries are
// republished with an incremented retry header until MaxRetries is reached.
func (q *AMQPQueue) Subscribe(topic string, handler Handler) error {
	ch, err := q.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch, topic); err != nil {
		_ = ch.Close()
		return err
	}

	msgs, err := ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		defer ch.Close()
		for d := range msgs {
			q.handleDelivery(topic, handler, d)
		}
	}()
	return nil
}

func (q *AMQPQueue) handleDelivery(topic string, handler Handler, d amqp.Delivery) {
	ctx := context.Background()
	err := handler(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	retry := retryCount(d.Headers)
	if retry < q.MaxRetries {
		logging.Warn().Err(err).Str("topic", topic).Int("attempt", retry+1).Msg("delivery failed, requeueing")
		if perr := q.publish(ctx, topic, d.Body, int32(retry+1)); perr != nil {
			logging.Error().Err(perr).Str("topic", topic).Msg("requeue failed")
			_ = d.Nack(false, true)
			return
		}
	} else {
		logging.Error().Err(err).Str("topic", topic).Int("attempts", retry+1).Msg("delivery permanently failed")
	}
	_ = d.Ack(false)
}

// retryCount reads the retry header whatever integer type the broker decoded.
func retryCount(h amqp.Table) int {
	switch v := h[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	default:
		return 0
	}
}

func (q *AMQPQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	_ = q.pub.Close()
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
