package realtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
)

// Endpoint is the address Open dials.
const Endpoint = "ws://localhost:8080/ws"

type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

type MessageKind string

const (
	MessageSystem MessageKind = "system"
	MessageEvent  MessageKind = "event"
	MessageError  MessageKind = "error"
)

// Message is one entry of the notifier's append-only log.
type Message struct {
	Kind     MessageKind
	Text     string
	Envelope Envelope // set for MessageEvent only
	At       time.Time
}

var ErrAlreadyOpen = errors.New("notifier already opened")

// Notifier is the client end of the real-time channel. A Notifier carries a
// single connection lifecycle: once a connection has been opened, later
// OpenURL calls return ErrAlreadyOpen even after either side closed it.
// There is no reconnect; create a new Notifier instead.
type Notifier struct {
	mu      sync.Mutex
	state   State
	conn    *websocket.Conn
	log     []Message
	closing bool
	done    chan struct{}

	dialer    *websocket.Dialer
	logger    zerolog.Logger
	onMessage func(Message)
}

type Option func(*Notifier)

// WithLogger replaces the diagnostic logger.
func WithLogger(l zerolog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// WithOnMessage registers fn to observe every appended log entry.
// fn runs on the notifier's goroutines and must not block.
func WithOnMessage(fn func(Message)) Option {
	return func(n *Notifier) { n.onMessage = fn }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(n *Notifier) { n.dialer = d }
}

func NewNotifier(opts ...Option) *Notifier {
	n := &Notifier{
		state:  StateDisconnected,
		dialer: websocket.DefaultDialer,
		logger: logging.With().Str("component", "notifier").Logger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Open connects to Endpoint.
func (n *Notifier) Open(ctx context.Context) error {
	return n.OpenURL(ctx, Endpoint)
}

// OpenURL connects to url and starts delivering inbound envelopes to the log.
func (n *Notifier) OpenURL(ctx context.Context, url string) error {
	n.mu.Lock()
	if n.state != StateDisconnected || n.done != nil {
		n.mu.Unlock()
		return ErrAlreadyOpen
	}
	n.state = StateConnecting
	n.mu.Unlock()

	conn, resp, err := n.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		n.mu.Lock()
		n.appendLocked(Message{Kind: MessageError, Text: fmt.Sprintf("WebSocket error: %v", err)})
		n.state = StateDisconnected
		n.appendLocked(Message{Kind: MessageSystem, Text: "Disconnected from real-time server"})
		n.mu.Unlock()
		return err
	}

	n.mu.Lock()
	n.conn = conn
	n.done = make(chan struct{})
	n.state = StateConnected
	n.appendLocked(Message{Kind: MessageSystem, Text: "Connected to real-time server"})
	done := n.done
	n.mu.Unlock()

	n.logger.Info().Str("url", url).Msg("real-time connection established")
	go n.readLoop(conn, done)
	return nil
}

func (n *Notifier) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			n.handleClosed(err)
			return
		}
		n.handleMessage(data)
	}
}

func (n *Notifier) handleMessage(data []byte) {
	env, err := Decode(data)
	if err != nil {
		n.logger.Error().Err(err).Int("bytes", len(data)).Msg("dropping unparseable real-time message")
		return
	}

	n.mu.Lock()
	n.appendLocked(Message{Kind: MessageEvent, Text: string(env.Type()), Envelope: env})
	n.mu.Unlock()

	switch e := env.(type) {
	case CampaignUpdate:
		n.logger.Info().Str("action", e.Action).Str("id", e.ID).Msg("campaign update received")
	case AnalyticsUpdate:
		n.logger.Info().Str("action", e.Action).Str("id", e.ID).Msg("analytics update received")
	case ClientUpdate:
		n.logger.Info().Str("action", e.Action).Str("id", e.ID).Msg("client update received")
	case Subscribe, Unsubscribe, Unknown:
	}
}

func (n *Notifier) handleClosed(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.closing && !isCloseError(err) {
		n.appendLocked(Message{Kind: MessageError, Text: fmt.Sprintf("WebSocket error: %v", err)})
	}
	n.state = StateDisconnected
	n.conn = nil
	n.appendLocked(Message{Kind: MessageSystem, Text: "Disconnected from real-time server"})
}

func isCloseError(err error) bool {
	var ce *websocket.CloseError
	return errors.As(err, &ce) || errors.Is(err, net.ErrClosed)
}

// Send writes env if the connection is up; otherwise it does nothing.
func (n *Notifier) Send(env Envelope) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateConnected || n.conn == nil {
		return nil
	}
	data, err := Encode(env)
	if err != nil {
		return err
	}
	if err := n.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		n.appendLocked(Message{Kind: MessageError, Text: fmt.Sprintf("WebSocket error: %v", err)})
		return err
	}
	return nil
}

func (n *Notifier) Subscribe() error {
	return n.Send(Subscribe{Channel: ChannelCampaigns})
}

func (n *Notifier) Unsubscribe() error {
	return n.Send(Unsubscribe{Channel: ChannelCampaigns})
}

// Close shuts the connection if it is open and waits for the read loop to
// finish. It is safe to call on every exit path. The lock is released before
// the close frame is written so State and Messages stay responsive.
func (n *Notifier) Close() error {
	n.mu.Lock()
	conn, done := n.conn, n.done
	if n.state != StateConnected || conn == nil || n.closing {
		n.mu.Unlock()
		return nil
	}
	n.closing = true
	n.mu.Unlock()

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := conn.Close()

	<-done
	return err
}

func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Messages returns a copy of the log.
func (n *Notifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.log))
	copy(out, n.log)
	return out
}

// appendLocked must be called with mu held.
func (n *Notifier) appendLocked(m Message) {
	m.At = time.Now()
	n.log = append(n.log, m)
	if n.onMessage != nil {
		n.onMessage(m)
	}
}
