package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helix/internal/audit"
	auditmem "helix/internal/audit/store/memory"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
)

func TestPublisherFillsIdentityFields(t *testing.T) {
	store := auditmem.New()
	publisher := audit.NewPublisher(store)

	err := publisher.Emit(context.Background(), audit.Event{
		Category: audit.CategoryAuth,
		Subject:  "training",
		Action:   audit.ActionHandshake,
		Decision: audit.DecisionAuthorized,
	})
	require.NoError(t, err)

	events, err := publisher.ListBySubject(context.Background(), "training", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotZero(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestBufferAndWorkerRoundTrip(t *testing.T) {
	store := auditmem.New()
	buffer := audit.NewBuffer(store, 16)
	publisher := audit.NewPublisher(buffer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := audit.NewWorker(store, buffer.Inbox())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = worker.Run(ctx)
	}()

	userID := id.NewUserID()
	for i := 0; i < 3; i++ {
		require.NoError(t, publisher.Emit(ctx, audit.Event{
			Category: audit.CategoryAuth,
			UserID:   &userID,
			Subject:  "training",
			Action:   audit.ActionSecureUpdate,
			Decision: audit.DecisionDenied,
			Reason:   "invalid_key",
		}))
	}

	require.Eventually(t, func() bool {
		events, err := store.ListByUser(context.Background(), userID, 10)
		return err == nil && len(events) == 3
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestBufferShedsWhenFull(t *testing.T) {
	buffer := audit.NewBuffer(auditmem.New(), 1)

	require.NoError(t, buffer.Append(context.Background(), audit.Event{Action: audit.ActionHandshake}))
	err := buffer.Append(context.Background(), audit.Event{Action: audit.ActionHandshake})
	require.Error(t, err)
	assert.True(t, domerr.HasCode(err, domerr.CodeStoreUnavailable))
}
