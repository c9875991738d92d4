package event

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOutboxRepository keeps outbox rows in memory in insertion order
type fakeOutboxRepository struct {
	events  []*shared.OutboxEvent
	markErr error
}

func (f *fakeOutboxRepository) Save(_ context.Context, events ...*shared.OutboxEvent) error {
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeOutboxRepository) FindUnpublished(_ context.Context, limit int) ([]*shared.OutboxEvent, error) {
	var out []*shared.OutboxEvent
	for _, e := range f.events {
		if e.PublishedAt == nil {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOutboxRepository) MarkPublished(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	for _, e := range f.events {
		if e.ID == id {
			return e.MarkPublished(at)
		}
	}
	return errors.New("not found")
}

func (f *fakeOutboxRepository) CountUnpublished(_ context.Context) (int64, error) {
	var count int64
	for _, e := range f.events {
		if e.PublishedAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeOutboxRepository) DeletePublishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	kept := f.events[:0]
	var deleted int64
	for _, e := range f.events {
		if e.PublishedAt != nil && e.PublishedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.events = kept
	return deleted, nil
}

type publishedMessage struct {
	topic string
	key   string
}

// fakeBroker records every publish and can fail on a chosen message
type fakeBroker struct {
	published []publishedMessage
	failOn    map[string]error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{failOn: make(map[string]error)}
}

func (b *fakeBroker) Publish(_ context.Context, topic, key string, _ []byte) error {
	if err, ok := b.failOn[key]; ok {
		return err
	}
	b.published = append(b.published, publishedMessage{topic: topic, key: key})
	return nil
}

func (b *fakeBroker) Close() error { return nil }

func outboxRow(aggregateID string, offset time.Duration) *shared.OutboxEvent {
	return &shared.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "order",
		AggregateID:   aggregateID,
		EventType:     "order.created",
		Payload:       []byte(`{"order_id":"x"}`),
		CreatedAt:     time.Now().Add(offset),
	}
}

func newTestRelay(broker shared.MessageBroker, batchSize int) *OutboxRelay {
	cfg := DefaultRelayConfig()
	cfg.BatchSize = batchSize
	return NewOutboxRelay(nil, broker, cfg, nil, zap.NewNop())
}

func TestRelayBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes pending rows in creation order", func(t *testing.T) {
		repo := &fakeOutboxRepository{}
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Save(ctx, outboxRow(fmt.Sprintf("agg-%d", i), time.Duration(i)*time.Second)))
		}
		broker := newFakeBroker()
		relay := newTestRelay(broker, 100)

		published, err := relay.relayBatch(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 5, published)

		require.Len(t, broker.published, 5)
		for i, msg := range broker.published {
			assert.Equal(t, fmt.Sprintf("agg-%d", i), msg.key)
			assert.Equal(t, "order-order.created", msg.topic)
		}

		remaining, err := repo.CountUnpublished(ctx)
		require.NoError(t, err)
		assert.Zero(t, remaining)
	})

	t.Run("honors the batch size", func(t *testing.T) {
		repo := &fakeOutboxRepository{}
		for i := 0; i < 150; i++ {
			require.NoError(t, repo.Save(ctx, outboxRow(fmt.Sprintf("agg-%d", i), time.Duration(i)*time.Millisecond)))
		}
		broker := newFakeBroker()
		relay := newTestRelay(broker, 100)

		published, err := relay.relayBatch(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 100, published)

		remaining, err := repo.CountUnpublished(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(50), remaining)

		published, err = relay.relayBatch(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 50, published)
	})

	t.Run("defers the batch remainder after a publish failure", func(t *testing.T) {
		repo := &fakeOutboxRepository{}
		for i := 0; i < 5; i++ {
			require.NoError(t, repo.Save(ctx, outboxRow(fmt.Sprintf("agg-%d", i), time.Duration(i)*time.Second)))
		}
		broker := newFakeBroker()
		broker.failOn["agg-2"] = errors.New("broker unavailable")
		relay := newTestRelay(broker, 100)

		published, err := relay.relayBatch(ctx, repo)
		require.NoError(t, err, "a broker failure is not a cycle failure")
		assert.Equal(t, 2, published, "the prefix before the failure commits")

		remaining, err := repo.CountUnpublished(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), remaining, "the failed row and everything after stay pending")

		// the broker recovers and the next cycle resumes exactly where it stopped
		delete(broker.failOn, "agg-2")
		published, err = relay.relayBatch(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 3, published)
		assert.Equal(t, "agg-2", broker.published[2].key, "ordering survives the retry")
	})

	t.Run("fails the cycle when marking a row fails", func(t *testing.T) {
		repo := &fakeOutboxRepository{}
		require.NoError(t, repo.Save(ctx, outboxRow("agg-0", 0)))
		repo.markErr = errors.New("connection reset")
		broker := newFakeBroker()
		relay := newTestRelay(broker, 100)

		_, err := relay.relayBatch(ctx, repo)
		require.Error(t, err, "a database error must roll the transaction back")
	})

	t.Run("does nothing with an empty outbox", func(t *testing.T) {
		repo := &fakeOutboxRepository{}
		broker := newFakeBroker()
		relay := newTestRelay(broker, 100)

		published, err := relay.relayBatch(ctx, repo)
		require.NoError(t, err)
		assert.Zero(t, published)
		assert.Empty(t, broker.published)
	})
}

func TestOutboxEventTopic(t *testing.T) {
	e := outboxRow("agg-1", 0)
	assert.Equal(t, "order-order.created", e.Topic())
}

func TestOutboxEventMarkPublished(t *testing.T) {
	e := outboxRow("agg-1", 0)
	assert.False(t, e.IsPublished())

	require.NoError(t, e.MarkPublished(time.Now()))
	assert.True(t, e.IsPublished())

	require.Error(t, e.MarkPublished(time.Now()), "a row is marked at most once")
}
