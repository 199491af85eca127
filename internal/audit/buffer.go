package audit

import (
	"context"

	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

// Buffer is a Store whose writes land on a channel instead of the backing
// store, keeping authorization hot paths free of synchronous persistence.
// A Worker drains the channel into the real store; reads go straight
// through, so they see only events already flushed.
type Buffer struct {
	store Store
	inbox chan Event
}

func NewBuffer(store Store, size int) *Buffer {
	if size < 1 {
		size = 1
	}
	return &Buffer{store: store, inbox: make(chan Event, size)}
}

// Inbox is the channel a Worker drains.
func (b *Buffer) Inbox() <-chan Event {
	return b.inbox
}

// Append enqueues without blocking. A full buffer sheds the event and
// reports it; emitters treat audit failures as log-only.
func (b *Buffer) Append(_ context.Context, event Event) error {
	select {
	case b.inbox <- event:
		return nil
	default:
		return domerr.New(domerr.CodeStoreUnavailable, "audit buffer full")
	}
}

func (b *Buffer) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]Event, error) {
	return b.store.ListByUser(ctx, userID, limit)
}

func (b *Buffer) ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error) {
	return b.store.ListBySubject(ctx, subject, limit)
}

func (b *Buffer) ListByAction(ctx context.Context, action string, limit int) ([]Event, error) {
	return b.store.ListByAction(ctx, action, limit)
}
