// Package kafkaconsumer consumes dataset invalidation events and evicts
// the memoized compositions they affect.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/mateonav/geolayers/internal/core/observability"
	"github.com/mateonav/geolayers/internal/invalidation"
	mylog "github.com/mateonav/geolayers/internal/logger"
)

// Invalidator is the slice of the memo layer the consumer needs.
type Invalidator interface {
	InvalidateDataset(ctx context.Context, dataset string) (int, error)
}

const seenVersionsSize = 4096

type Consumer struct {
	cfg     Config
	logger  *slog.Logger
	memo    Invalidator
	seen    *lru.Cache[string, int64]
	handler *groupHandler
	zlog    *zerolog.Logger
}

func New(cfg Config, logger *slog.Logger, memo Invalidator) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	seen, _ := lru.New[string, int64](seenVersionsSize)
	return &Consumer{
		cfg:    cfg,
		logger: logger,
		memo:   memo,
		seen:   seen,
	}
}

// Readiness reports whether the consumer holds an active claim, and
// which partitions it owns.
func (c *Consumer) Readiness() (bool, []int32) {
	if c.handler == nil {
		return false, nil
	}
	return c.handler.state()
}

// Start runs the consumer group loop until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if c.memo == nil {
		return errors.New("kafkaconsumer: missing memo invalidator")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	zl := mylog.Build(mylog.Config{Level: "info", Component: "kafka_consumer"}, nil)
	base := mylog.WithComponent(context.Background(), "kafka_consumer")
	c.zlog = mylog.FromContext(base, &zl)

	c.handler = &groupHandler{process: c.ProcessOne}

	c.logger.Info("invalidation consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("invalidation consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, c.handler); err != nil {
				c.logger.Error("consumer error", "err", err)
				c.zlog.Error().Err(err).
					Strs("brokers", c.cfg.Brokers).
					Str("topic", c.cfg.Topic).
					Msg("kafka consumer error")
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single invalidation message.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		observability.IncInvalidation("decode_error")
		mylog.FromContext(ctx, c.zlog).Error().
			Str("kind", "decode").
			Str("topic", msg.Topic).
			Int32("partition", msg.Partition).
			Int64("offset", msg.Offset).
			Msg("invalidation event error")
		return fmt.Errorf("json decode: %w", err)
	}
	if err := ev.Validate(); err != nil {
		// Malformed events are logged and skipped; retrying cannot fix them.
		observability.IncInvalidation("invalid")
		c.logger.Warn("skipping invalid invalidation event", "err", err,
			"topic", msg.Topic, "offset", msg.Offset)
		return nil
	}

	if c.stale(ev) {
		observability.IncInvalidation("stale")
		c.logger.Debug("skipping stale invalidation event",
			"dataset", ev.Dataset, "content_version", ev.ContentVersion)
		return nil
	}

	n, err := c.memo.InvalidateDataset(ctx, ev.Dataset)
	if err != nil {
		observability.IncInvalidation("store_error")
		mylog.FromContext(ctx, c.zlog).Error().Err(err).
			Str("dataset", ev.Dataset).
			Msg("memo eviction failed")
		return fmt.Errorf("invalidate dataset %q: %w", ev.Dataset, err)
	}

	observability.IncInvalidation("applied")
	mylog.FromContext(ctx, c.zlog).Info().
		Str("event", "invalidation").
		Str("op", ev.Op).
		Str("dataset", ev.Dataset).
		Int("evicted", n).
		Msg("memo entries evicted")
	return nil
}

// stale reports whether the event's content version is at or below the
// newest one already applied for its dataset, and records the newer one.
func (c *Consumer) stale(ev invalidation.Event) bool {
	if ev.ContentVersion == 0 {
		return false // producer does not version; apply everything
	}
	if last, ok := c.seen.Get(ev.Dataset); ok && ev.ContentVersion <= last {
		return true
	}
	c.seen.Add(ev.Dataset, ev.ContentVersion)
	return false
}
