package realtime

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a bytes.Buffer shared with the read loop.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// scriptedServer upgrades one connection, writes frames, and forwards every
// frame it receives on got.
func scriptedServer(t *testing.T, frames ...string) (*httptest.Server, chan string) {
	t.Helper()
	got := make(chan string, 16)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			got <- string(data)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func kinds(msgs []Message) []MessageKind {
	out := make([]MessageKind, len(msgs))
	for i, m := range msgs {
		out[i] = m.Kind
	}
	return out
}

func TestSendBeforeConnectedIsNoop(t *testing.T) {
	n := NewNotifier(WithLogger(zerolog.Nop()))
	assert.Equal(t, StateDisconnected, n.State())

	require.NoError(t, n.Subscribe())
	require.NoError(t, n.Send(Unsubscribe{Channel: ChannelCampaigns}))
	assert.Empty(t, n.Messages())
	assert.Equal(t, StateDisconnected, n.State())
}

func TestOpenSubscribeAndClose(t *testing.T) {
	srv, got := scriptedServer(t)
	n := NewNotifier(WithLogger(zerolog.Nop()))

	require.NoError(t, n.OpenURL(context.Background(), wsURL(srv)))
	assert.Equal(t, StateConnected, n.State())
	assert.ErrorIs(t, n.OpenURL(context.Background(), wsURL(srv)), ErrAlreadyOpen)

	require.NoError(t, n.Subscribe())
	select {
	case frame := <-got:
		assert.JSONEq(t, `{"type":"subscribe","channel":"campaigns"}`, frame)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive subscribe")
	}

	_ = n.Close()
	assert.Equal(t, StateDisconnected, n.State())
	assert.Equal(t, []MessageKind{MessageSystem, MessageSystem}, kinds(n.Messages()))

	// closing twice is harmless
	assert.NoError(t, n.Close())
}

func TestInboundEventsAreLogged(t *testing.T) {
	srv, _ := scriptedServer(t,
		`{"type":"campaign_update","action":"updated","id":"c1"}`,
		`{"type":"mystery","x":1}`,
	)
	hook, seen := afterN(3) // connected + two events
	n := NewNotifier(WithLogger(zerolog.Nop()), WithOnMessage(hook))

	require.NoError(t, n.OpenURL(context.Background(), wsURL(srv)))
	waitOrFail(t, seen)
	_ = n.Close()

	msgs := n.Messages()
	require.GreaterOrEqual(t, len(msgs), 3)
	assert.Equal(t, MessageEvent, msgs[1].Kind)
	cu, ok := msgs[1].Envelope.(CampaignUpdate)
	require.True(t, ok)
	assert.Equal(t, "c1", cu.ID)
	_, ok = msgs[2].Envelope.(Unknown)
	assert.True(t, ok)
}

func TestInvalidJSONProducesSingleErrorLine(t *testing.T) {
	srv, _ := scriptedServer(t, `{not json`, `{"type":"client_update","action":"deleted","id":"cl1"}`)

	var diag syncBuffer
	hook, seen := afterN(2) // connected + the valid event
	n := NewNotifier(
		WithLogger(zerolog.New(&diag).Level(zerolog.ErrorLevel)),
		WithOnMessage(hook),
	)

	require.NoError(t, n.OpenURL(context.Background(), wsURL(srv)))
	waitOrFail(t, seen)

	lines := strings.Split(strings.TrimSpace(diag.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"error"`)

	// the bad frame added nothing to the message log
	msgs := n.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, []MessageKind{MessageSystem, MessageEvent}, kinds(msgs))
	_ = n.Close()
}

func TestMistypedKnownEnvelopeIsStillLogged(t *testing.T) {
	srv, _ := scriptedServer(t, `{"type":"campaign_update","id":42}`, `{"type":"mystery"}`)

	var diag syncBuffer
	hook, seen := afterN(3) // connected + two events
	n := NewNotifier(
		WithLogger(zerolog.New(&diag).Level(zerolog.ErrorLevel)),
		WithOnMessage(hook),
	)
	require.NoError(t, n.OpenURL(context.Background(), wsURL(srv)))
	waitOrFail(t, seen)

	msgs := n.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []MessageKind{MessageSystem, MessageEvent, MessageEvent}, kinds(msgs))
	assert.Equal(t, TypeCampaignUpdate, msgs[1].Envelope.Type())
	assert.Empty(t, diag.String())
	_ = n.Close()
}

func TestCloseIsTerminalAndKeepsReadersResponsive(t *testing.T) {
	srv, _ := scriptedServer(t)
	dialer := &websocket.Dialer{HandshakeTimeout: time.Second}
	n := NewNotifier(WithLogger(zerolog.Nop()), WithDialer(dialer))
	require.NoError(t, n.OpenURL(context.Background(), wsURL(srv)))

	stop := make(chan struct{})
	readersDone := make(chan struct{})
	go func() {
		defer close(readersDone)
		for {
			select {
			case <-stop:
				return
			default:
				_ = n.State()
				_ = n.Messages()
			}
		}
	}()

	closed := make(chan struct{})
	go func() {
		_ = n.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
	close(stop)
	<-readersDone

	assert.Equal(t, StateDisconnected, n.State())
	assert.ErrorIs(t, n.OpenURL(context.Background(), wsURL(srv)), ErrAlreadyOpen)
}

func TestDialFailureLeavesDisconnected(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	n := NewNotifier(WithLogger(zerolog.Nop()))
	err := n.OpenURL(context.Background(), url)
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, n.State())
	assert.Equal(t, []MessageKind{MessageError, MessageSystem}, kinds(n.Messages()))
	assert.NoError(t, n.Close())
}

func TestServerCloseMovesToDisconnected(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
		_ = conn.Close()
	}))
	defer srv.Close()

	disconnected := make(chan struct{})
	var once sync.Once
	n := NewNotifier(WithLogger(zerolog.Nop()), WithOnMessage(func(m Message) {
		if m.Text == "Disconnected from real-time server" {
			once.Do(func() { close(disconnected) })
		}
	}))
	require.NoError(t, n.OpenURL(context.Background(), wsURL(srv)))

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier never observed the close")
	}
	assert.Equal(t, StateDisconnected, n.State())
	assert.Equal(t, []MessageKind{MessageSystem, MessageSystem}, kinds(n.Messages()))
	assert.NoError(t, n.Send(Subscribe{Channel: ChannelCampaigns}))
}

// afterN returns a hook that closes the channel once n entries were appended.
func afterN(n int) (func(Message), <-chan struct{}) {
	var mu sync.Mutex
	count := 0
	done := make(chan struct{})
	return func(Message) {
		mu.Lock()
		defer mu.Unlock()
		count++
		if count == n {
			close(done)
		}
	}, done
}

func waitOrFail(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for messages")
	}
}
