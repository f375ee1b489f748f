package realtime

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/metrics"
)

type outbound struct {
	channel string
	data    []byte
}

// Hub relays envelopes to every connected WebSocket client. With a Redis
// client it also relays whatever any instance publishes on the Redis channel.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}

	mu           sync.RWMutex
	redisClient  *redis.Client
	redisChannel string
	upgrader     websocket.Upgrader
}

// NewHub creates a Hub. redisClient may be nil for a single instance.
func NewHub(redisClient *redis.Client, redisChannel string, allowedOrigins []string) *Hub {
	h := &Hub{
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan outbound, 256),
		done:         make(chan struct{}),
		redisClient:  redisClient,
		redisChannel: redisChannel,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// originChecker allows same-origin requests and any listed origin; an empty list allows all.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == origin || a == "*" {
				return true
			}
		}
		return false
	}
}

// Run owns the client set until ctx is canceled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	if h.redisClient != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.RealtimeClients.Set(float64(n))
			logging.Info().Int("total_clients", n).Msg("websocket client connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.RealtimeClients.Set(float64(n))
			logging.Info().Int("total_clients", n).Msg("websocket client disconnected")

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !c.wants(msg.channel) {
					continue
				}
				select {
				case c.send <- msg.data:
				default:
					// slow consumer
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.RealtimeClients.Set(0)
			return ctx.Err()
		}
	}
}

// Relay decodes payload and broadcasts it to local clients. Malformed
// payloads are dropped and reported.
func (h *Hub) Relay(ctx context.Context, payload []byte) error {
	env, err := Decode(payload)
	if err != nil {
		logging.Warn().Err(err).Msg("hub dropping malformed envelope")
		return nil
	}
	metrics.RealtimeEventsTotal.WithLabelValues(string(env.Type()), "relay").Inc()
	select {
	case h.broadcast <- outbound{channel: Channel(env), data: payload}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.redisClient.Subscribe(ctx, h.redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_ = h.Relay(ctx, []byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and attaches a new client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	c := newClient(h, conn)
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// RedisPublisher publishes envelopes onto the Redis channel hubs listen to.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

func (p *RedisPublisher) Publish(ctx context.Context, payload []byte) error {
	return p.Client.Publish(ctx, p.Channel, payload).Err()
}
