package broker

import (
	"context"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/infrastructure/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaBroker publishes outbox events to Kafka through one long-lived
// writer. Messages are keyed by aggregate id so all events of one aggregate
// land on the same partition and keep their relative order.
type KafkaBroker struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaBroker creates a broker over the configured cluster
func NewKafkaBroker(cfg config.KafkaConfig, logger *zap.Logger) *KafkaBroker {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		WriteTimeout:           cfg.WriteTimeout,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
	}
	return &KafkaBroker{writer: writer, logger: logger}
}

// Publish writes one message to the topic, keyed for partition affinity
func (b *KafkaBroker) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return b.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Close flushes and closes the writer
func (b *KafkaBroker) Close() error {
	return b.writer.Close()
}

var _ shared.MessageBroker = (*KafkaBroker)(nil)
