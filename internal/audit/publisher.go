package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "helix/pkg/domain"
)

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID, limit int) ([]Event, error)
	ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error)
	ListByAction(ctx context.Context, action string, limit int) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	return p.store.Append(ctx, base)
}

func (p *Publisher) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]Event, error) {
	return p.store.ListByUser(ctx, userID, limit)
}

func (p *Publisher) ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error) {
	return p.store.ListBySubject(ctx, subject, limit)
}

func (p *Publisher) ListByAction(ctx context.Context, action string, limit int) ([]Event, error) {
	return p.store.ListByAction(ctx, action, limit)
}
