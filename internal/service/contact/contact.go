package contact

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/events"
)

const meterName = "github.com/willsigmon/boppa/internal/service/contact"

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	// Submit validates and stores a visitor's message. Validation failures
	// are returned as *schema.ValidationError.
	Submit(ctx context.Context, in schema.InsertContactMessage) (*schema.ContactMessage, error)
	// List returns every message, newest first.
	List(ctx context.Context) ([]*schema.ContactMessage, error)
	Get(ctx context.Context, id int) (*schema.ContactMessage, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type contactService struct {
	store     storage.Storage
	publisher events.Publisher
	submitted metric.Int64Counter
}

func New(store storage.Storage, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	submitted, err := otel.Meter(meterName).Int64Counter(
		"contact_messages_submitted_total",
		metric.WithDescription("Contact messages stored, by service type"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		slog.Warn("contact: create submitted counter failed", "err", err)
	}
	return &contactService{store: store, publisher: publisher, submitted: submitted}
}

func (s *contactService) Submit(ctx context.Context, in schema.InsertContactMessage) (*schema.ContactMessage, error) {
	in, err := schema.ParseInsertContactMessage(in)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.CreateContactMessage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if s.submitted != nil {
		serviceType := "none"
		if msg.ServiceType != nil {
			serviceType = *msg.ServiceType
		}
		s.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("service_type", serviceType)))
	}

	// The message is stored; a lost notification must not fail the visitor.
	if err := s.publisher.Publish(ctx, events.ContactMessageCreated, msg.ID); err != nil {
		slog.WarnContext(ctx, "contact: publish created event failed", "id", msg.ID, "err", err)
	}

	return msg, nil
}

func (s *contactService) List(ctx context.Context) ([]*schema.ContactMessage, error) {
	msgs, err := s.store.ListContactMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return msgs, nil
}

func (s *contactService) Get(ctx context.Context, id int) (*schema.ContactMessage, error) {
	msg, err := s.store.GetContactMessage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if msg == nil {
		return nil, ErrNotFound
	}
	return msg, nil
}

