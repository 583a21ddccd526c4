package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (*NatsPublisher, error) {
	nc, err := nats.Connect(
		natsURL,
		nats.Name("kahunas-api"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats_disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: nc}, nil
}

// Subject is the NATS subject an event is published on: its type, so
// subscribers can match "appointment.*".
func Subject(eventType string) string {
	return eventType
}

func (p *NatsPublisher) Publish(ctx context.Context, event ScheduleEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	subject := Subject(event.Type)
	if err := p.conn.Publish(subject, payload); err != nil {
		return err
	}
	slog.DebugContext(ctx, "nats_published", "subject", subject)
	return nil
}

func (p *NatsPublisher) Close() {
	if p.conn != nil {
		_ = p.conn.Drain()
	}
}
