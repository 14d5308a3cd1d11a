package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/willsigmon/boppa/config"
	"github.com/willsigmon/boppa/internal/schema"
	"github.com/willsigmon/boppa/internal/storage"
	"github.com/willsigmon/boppa/pkg/email"
	"github.com/willsigmon/boppa/pkg/events"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc    fx.Lifecycle
	Cfg   *config.Config
	NC    *nats.Conn `optional:"true"`
	Store storage.Storage
	Email *email.Client
}

func RegisterWorkers(p WorkerParams) {
	notify := p.Cfg.Notifications.Contact
	if p.NC == nil || !notify.Enabled {
		slog.Info("contact_notifier: disabled", "nats", p.NC != nil, "notifications", notify.Enabled)
		return
	}

	notifier := &contactNotifier{
		store:    p.Store,
		sender:   p.Email,
		to:       notify.To,
		shopName: notify.ShopName,
	}
	subject := events.Wildcard(subjectPrefix(p.Cfg), events.ContactMessageCreated)

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			sub, err = p.NC.Subscribe(subject, notifier.handleMsg)
			if err != nil {
				return fmt.Errorf("contact_notifier: subscribe %s: %w", subject, err)
			}
			slog.Info("contact_notifier: started", "subject", subject)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if sub == nil {
				return nil
			}
			return sub.Unsubscribe()
		},
	})
}

// ---------------------------------------------------------------------------
// contact_notifier
// ---------------------------------------------------------------------------

const notifyTimeout = time.Minute

type contactNotifier struct {
	store    storage.Storage
	sender   email.Sender
	to       []string
	shopName string
}

func (n *contactNotifier) handleMsg(msg *nats.Msg) {
	id, err := events.ParseID(msg.Data)
	if err != nil {
		slog.Warn("contact_notifier: bad payload", "subject", msg.Subject, "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := n.notify(ctx, id); err != nil {
		slog.Error("contact_notifier: notify failed", "id", id, "err", err)
	}
}

// notify emails the shop about the stored message with the given id.
func (n *contactNotifier) notify(ctx context.Context, id int) error {
	m, err := n.store.GetContactMessage(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		slog.Warn("contact_notifier: message not found", "id", id)
		return nil
	}

	return n.sender.Send(ctx, email.BuildContactNotificationEmail(email.ContactNotificationData{
		ShopName:    n.shopName,
		To:          n.to,
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		Service:     schema.ServiceLabel(m.ServiceType),
		Message:     m.Message,
		SubmittedAt: m.CreatedAt,
	}))
}
