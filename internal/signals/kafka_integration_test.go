//go:build integration

package signals_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"helix/internal/signals"
	"helix/internal/streak"
	id "helix/pkg/domain"
	"helix/pkg/testutil/containers"
)

func TestKafkaPublishRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	redpanda := containers.NewRedpandaContainer(t)

	publisher, err := signals.NewKafka(ctx, []string{redpanda.Broker})
	require.NoError(t, err)
	defer publisher.Close()

	userID := id.NewUserID()
	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, publisher.Publish(ctx, signals.Multiplier(streak.MultiplierSignal{
		Source:        streak.SignalSource,
		Target:        streak.SignalTarget,
		UserID:        userID,
		Multiplier:    1.5,
		Tier:          streak.TierGrowing,
		CurrentStreak: 3,
	}, at)))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(signals.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.Len(t, records, 1)

	record := records[0]
	require.Equal(t, userID.String(), string(record.Key))
	require.Len(t, record.Headers, 1)
	require.Equal(t, "type", record.Headers[0].Key)
	require.Equal(t, string(signals.TypeMultiplier), string(record.Headers[0].Value))

	var msg struct {
		Type    string `json:"type"`
		UserID  string `json:"user_id"`
		Payload struct {
			Multiplier    float64 `json:"multiplier"`
			CurrentStreak int     `json:"current_streak"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(record.Value, &msg))
	require.Equal(t, string(signals.TypeMultiplier), msg.Type)
	require.Equal(t, userID.String(), msg.UserID)
	require.Equal(t, 1.5, msg.Payload.Multiplier)
	require.Equal(t, 3, msg.Payload.CurrentStreak)
}
