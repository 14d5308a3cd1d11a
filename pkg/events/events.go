// Package events publishes domain events on NATS subjects of the form
// <prefix>.<entity>.<action>.<id>. The payload is the entity id.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/nats-io/nats.go"
)

const ContactMessageCreated = "contact.message.created"

// Publisher publishes an event about the entity with the given id.
type Publisher interface {
	Publish(ctx context.Context, event string, id int) error
}

// Subject returns the full subject for an event about id.
func Subject(prefix, event string, id int) string {
	return prefix + "." + event + "." + strconv.Itoa(id)
}

// Wildcard returns the subject matching event for every id.
func Wildcard(prefix, event string) string {
	return prefix + "." + event + ".*"
}

// ParseID extracts the entity id from a message payload.
func ParseID(data []byte) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("events: invalid id payload %q: %w", data, err)
	}
	return id, nil
}

type conn interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	nc     conn
	prefix string
}

var _ Publisher = (*NATSPublisher)(nil)

func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

func (p *NATSPublisher) Publish(ctx context.Context, event string, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject := Subject(p.prefix, event, id)
	if err := p.nc.Publish(subject, []byte(strconv.Itoa(id))); err != nil {
		return fmt.Errorf("events: publish %s: %w", subject, err)
	}
	return nil
}

// NopPublisher drops every event. It is used when NATS is not configured.
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

func (NopPublisher) Publish(ctx context.Context, event string, id int) error {
	slog.DebugContext(ctx, "events: NATS not configured, dropping event", "event", event, "id", id)
	return nil
}
