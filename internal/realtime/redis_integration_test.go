//go:build integration

package realtime

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/adsadmin-backend/internal/testinfra"
)

func TestHubRelaysRedisChannel(t *testing.T) {
	addr := testinfra.StartRedis(t)
	const channel = "realtime_events"

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	// two hubs share the channel the way two server instances do
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	var (
		hubs    []*Hub
		servers []*httptest.Server
	)
	for i := 0; i < 2; i++ {
		h := NewHub(rdb, channel, nil)
		hubs = append(hubs, h)
		go func() { _ = h.Run(ctx) }()
		srv := httptest.NewServer(h)
		t.Cleanup(srv.Close)
		servers = append(servers, srv)
	}

	require.Eventually(t, func() bool {
		subs, err := rdb.PubSubNumSub(ctx, channel).Result()
		return err == nil && subs[channel] == 2
	}, 10*time.Second, 20*time.Millisecond)

	a, b := dial(t, servers[0]), dial(t, servers[1])
	require.Eventually(t, func() bool {
		return hubs[0].ClientCount() == 1 && hubs[1].ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	env, err := NewUpdate(TypeAnalyticsUpdate, ActionUpdated, "an1", map[string]int{"clicks": 7})
	require.NoError(t, err)
	payload, err := Encode(env)
	require.NoError(t, err)

	pub := &RedisPublisher{Client: rdb, Channel: channel}
	require.NoError(t, pub.Publish(ctx, payload))

	for _, conn := range []*websocket.Conn{a, b} {
		got := readEnvelope(t, conn)
		au, ok := got.(AnalyticsUpdate)
		require.True(t, ok)
		assert.Equal(t, "an1", au.ID)
		assert.Equal(t, ActionUpdated, au.Action)
	}

	// malformed payloads on the channel are dropped without stopping the relay
	require.NoError(t, pub.Publish(ctx, []byte(`not json`)))
	require.NoError(t, pub.Publish(ctx, payload))
	got := readEnvelope(t, a)
	_, ok := got.(AnalyticsUpdate)
	assert.True(t, ok)
}
