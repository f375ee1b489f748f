// Command notifier connects to the realtime endpoint, subscribes to campaign
// events and prints every message-log entry until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
)

func main() {
	url := flag.String("url", realtime.Endpoint, "realtime endpoint")
	logLevel := flag.String("log-level", "warn", "diagnostic log level")
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	disconnected := make(chan struct{}, 1)
	n := realtime.NewNotifier(
		realtime.WithLogger(logging.Logger().With().Str("cmd", "notifier").Logger()),
		realtime.WithDialer(&websocket.Dialer{HandshakeTimeout: 10 * time.Second}),
		realtime.WithOnMessage(func(m realtime.Message) {
			fmt.Printf("%s [%s] %s\n", m.At.Format(time.TimeOnly), m.Kind, describe(m))
			if m.Kind == realtime.MessageSystem && m.Text == "Disconnected from real-time server" {
				select {
				case disconnected <- struct{}{}:
				default:
				}
			}
		}),
	)
	defer n.Close()

	if err := n.OpenURL(ctx, *url); err != nil {
		logging.Error().Err(err).Str("url", *url).Msg("could not connect")
		os.Exit(1)
	}
	if err := n.Subscribe(); err != nil {
		logging.Error().Err(err).Msg("subscribe failed")
	}

	select {
	case <-ctx.Done():
		_ = n.Unsubscribe()
	case <-disconnected:
	}
}

func describe(m realtime.Message) string {
	if m.Envelope == nil {
		return m.Text
	}
	switch e := m.Envelope.(type) {
	case realtime.CampaignUpdate:
		return fmt.Sprintf("campaign %s %s", e.ID, e.Action)
	case realtime.AnalyticsUpdate:
		return fmt.Sprintf("analytics %s %s", e.ID, e.Action)
	case realtime.ClientUpdate:
		return fmt.Sprintf("client %s %s", e.ID, e.Action)
	case realtime.Subscribe:
		return "subscribed to " + e.Channel
	case realtime.Unsubscribe:
		return "unsubscribed from " + e.Channel
	case realtime.Unknown:
		return "unknown event " + e.Tag
	default:
		return m.Text
	}
}
