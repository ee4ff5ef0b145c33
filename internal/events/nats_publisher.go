package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"docqa/internal/domain"
)

// Publisher is the subset of *nats.Conn used to publish events.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes every event as JSON on <prefix>.<kind>.
type NATSPublisher struct {
	conn   Publisher
	prefix string
}

// NewNATSPublisher creates a NATSPublisher on an established connection.
func NewNATSPublisher(conn Publisher, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix}
}

// Connect dials the NATS server used for event publishing.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("docqa"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject an event kind is published on.
func (p *NATSPublisher) Subject(kind domain.EventKind) string {
	return p.prefix + "." + string(kind)
}

func (p *NATSPublisher) Observe(ctx context.Context, event *domain.ExtractionEvent) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.Subject(event.Kind), data); err != nil {
		return fmt.Errorf("publish %s: %w", event.Kind, err)
	}
	return nil
}

// ConnCheck returns a readiness probe that fails while nc is not connected.
func ConnCheck(nc *nats.Conn) func(context.Context) error {
	return func(context.Context) error {
		if !nc.IsConnected() {
			return fmt.Errorf("nats connection %s", nc.Status())
		}
		return nil
	}
}
