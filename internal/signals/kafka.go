package signals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"helix/internal/platform/metrics"
)

// Topic is the single outbound stream. The signal type travels in a record
// header; the user id is the partition key so per-user ordering holds
// end to end.
const Topic = "identity.signals"

// Kafka publishes signals through franz-go. Producing is synchronous: the
// coordinator treats an unacknowledged signal as a transient failure.
type Kafka struct {
	client  *kgo.Client
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type KafkaOption func(*Kafka)

func WithLogger(logger *slog.Logger) KafkaOption {
	return func(k *Kafka) { k.logger = logger }
}

func WithMetrics(m *metrics.Metrics) KafkaOption {
	return func(k *Kafka) { k.metrics = m }
}

// NewKafka connects to the brokers and makes sure the topic exists.
func NewKafka(ctx context.Context, brokers []string, opts ...KafkaOption) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RecordRetries(3),
		kgo.ProduceRequestTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	resp, err := admin.CreateTopic(ctx, 12, 1, nil, Topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure topic %s: %w", Topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure topic %s: %w", Topic, resp.Err)
	}

	k := &Kafka{client: client}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

func (k *Kafka) Publish(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode signal: %w", err)
	}
	record := &kgo.Record{
		Topic: Topic,
		Key:   []byte(msg.UserID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(msg.Type)},
		},
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		k.metrics.IncSignalFailure()
		if k.logger != nil {
			k.logger.ErrorContext(ctx, "signal publish failed",
				"type", string(msg.Type),
				"user_id", msg.UserID.String(),
				"error", err,
			)
		}
		return fmt.Errorf("produce signal: %w", err)
	}
	k.metrics.IncSignal(string(msg.Type))
	return nil
}

func (k *Kafka) Close() error {
	k.client.Close()
	return nil
}
