package catalogsync

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/mvasquez/pricegrid-backend/internal/catalog"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

const productUpdatedEventType = "catalog.product_updated"

type cacheInvalidator interface {
	Del(ctx context.Context, keys ...string) error
	CatalogKey(productID string) string
}

// Consumer evicts cached pricing-config snapshots when a product changes.
// Without it, replicas other than the one that served the mutation would
// keep serving the stale snapshot until its TTL expires.
type Consumer struct {
	cache        cacheInvalidator
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds a catalog cache-invalidation consumer.
func NewConsumer(cache cacheInvalidator, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if cache == nil {
		return nil, fmt.Errorf("cache client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		cache:        cache,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("catalog subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg.ID, msg.Attributes["event_type"], msg.Data)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, messageID, eventType string, data []byte) processResult {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	if eventType != productUpdatedEventType {
		c.logg.Info(logCtx, "skipping non-catalog event")
		return processResult{ack: true}
	}

	var event catalog.ProductUpdatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode catalog event", err)
		return processResult{ack: true}
	}
	if event.ProductID == "" {
		c.logg.Warn(logCtx, "catalog event missing product id")
		return processResult{ack: true}
	}

	logCtx = c.logg.WithProductID(logCtx, event.ProductID)
	if err := c.cache.Del(ctx, c.cache.CatalogKey(event.ProductID)); err != nil {
		c.logg.Error(logCtx, "failed to evict catalog snapshot", err)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "catalog snapshot evicted")
	return processResult{ack: true}
}
