package event

import (
	"context"
	"sync"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelayConfig holds configuration for the outbox relay
type RelayConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupEnabled   bool
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// DefaultRelayConfig returns the default relay configuration
func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		BatchSize:        100,
		PollInterval:     60 * time.Second,
		CleanupEnabled:   true,
		CleanupRetention: 7 * 24 * time.Hour,
		CleanupInterval:  1 * time.Hour,
	}
}

// Metrics records relay counters
type Metrics interface {
	OutboxPublished(ctx context.Context, count int)
	OutboxPublishFailed(ctx context.Context)
}

// NopMetrics discards all measurements
type NopMetrics struct{}

func (NopMetrics) OutboxPublished(context.Context, int) {}
func (NopMetrics) OutboxPublishFailed(context.Context)  {}

// OutboxRelay moves committed outbox rows to the message broker. Each cycle
// runs in one database transaction: unpublished rows are claimed with FOR
// UPDATE SKIP LOCKED, published one by one in creation order and marked as
// they go. Delivery is at least once; a crash between publish and commit
// redelivers the row next cycle.
type OutboxRelay struct {
	db      *gorm.DB
	broker  shared.MessageBroker
	config  RelayConfig
	metrics Metrics
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOutboxRelay creates an outbox relay
func NewOutboxRelay(db *gorm.DB, broker shared.MessageBroker, config RelayConfig, metrics Metrics, logger *zap.Logger) *OutboxRelay {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultRelayConfig().BatchSize
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultRelayConfig().PollInterval
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultRelayConfig().CleanupInterval
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &OutboxRelay{
		db:      db,
		broker:  broker,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// Start starts the background relay loops
func (r *OutboxRelay) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go r.relayLoop(ctx)

	if r.config.CleanupEnabled {
		r.wg.Add(1)
		go r.cleanupLoop(ctx)
	}

	r.logger.Info("outbox relay started",
		zap.Int("batch_size", r.config.BatchSize),
		zap.Duration("poll_interval", r.config.PollInterval),
	)
	return nil
}

// Stop gracefully stops the relay, waiting for an in-flight cycle
func (r *OutboxRelay) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("outbox relay stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *OutboxRelay) relayLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunCycle(ctx)
		}
	}
}

// RunCycle executes one relay cycle. Exported so operators can trigger an
// immediate drain (startup, tests) without waiting for the ticker.
func (r *OutboxRelay) RunCycle(ctx context.Context) {
	var published int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		published, txErr = r.relayBatch(ctx, NewGormOutboxRepository(tx))
		return txErr
	})
	if err != nil {
		r.logger.Error("outbox relay cycle failed", zap.Error(err))
		return
	}
	if published > 0 {
		r.metrics.OutboxPublished(ctx, published)
		r.logger.Info("outbox events published", zap.Int("count", published))
	}
}

// relayBatch claims and publishes one batch on the given repository. On a
// broker failure it stops and returns the count already published; those
// marks commit with the surrounding transaction while the failed row and
// everything after it stay unpublished for the next cycle. Per-aggregate
// ordering survives because rows are processed in creation order and a
// failure never skips ahead.
func (r *OutboxRelay) relayBatch(ctx context.Context, repo shared.OutboxRepository) (int, error) {
	events, err := repo.FindUnpublished(ctx, r.config.BatchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, e := range events {
		if err := r.broker.Publish(ctx, e.Topic(), e.AggregateID, e.Payload); err != nil {
			r.metrics.OutboxPublishFailed(ctx)
			r.logger.Warn("outbox publish failed, deferring batch remainder",
				zap.String("event_id", e.ID.String()),
				zap.String("topic", e.Topic()),
				zap.Int("remaining", len(events)-published),
				zap.Error(err))
			return published, nil
		}
		if err := repo.MarkPublished(ctx, e.ID, time.Now()); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}

func (r *OutboxRelay) cleanupLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-r.config.CleanupRetention)
			deleted, err := NewGormOutboxRepository(r.db).DeletePublishedBefore(ctx, cutoff)
			if err != nil {
				r.logger.Error("outbox cleanup failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				r.logger.Info("outbox cleanup removed published events",
					zap.Int64("deleted", deleted))
			}
		}
	}
}
