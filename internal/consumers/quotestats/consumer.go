package quotestats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/mvasquez/pricegrid-backend/internal/quote"
	"github.com/mvasquez/pricegrid-backend/pkg/logger"
)

const (
	quoteComputedEventType = "quote.computed"

	// counterTTL keeps daily rollups around for a week so dashboards can
	// chart a trailing window without a durable store.
	counterTTL = 7 * 24 * time.Hour
)

type counterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	CounterKey(name string) string
}

// Consumer rolls quote activity into daily Redis counters keyed by day and
// pricing mode.
type Consumer struct {
	counters     counterStore
	subscription *pubsub.Subscriber
	logg         *logger.Logger
	now          func() time.Time
}

// NewConsumer builds a quote statistics consumer.
func NewConsumer(counters counterStore, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if counters == nil {
		return nil, fmt.Errorf("counter store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		counters:     counters,
		subscription: subscription,
		logg:         logg,
		now:          time.Now,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("quote subscription required")
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

	if eventType != quoteComputedEventType {
		c.logg.Info(logCtx, "skipping non-quote event")
		return processResult{ack: true}
	}

	var event quote.QuoteComputedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.logg.Error(logCtx, "failed to decode quote event", err)
		return processResult{ack: true}
	}

	day := c.now().UTC().Format("2006-01-02")
	names := []string{
		fmt.Sprintf("quotes:%s", day),
		fmt.Sprintf("quotes:%s:mode:%s", day, event.PricingMode),
	}
	if event.WarningCount > 0 {
		names = append(names, fmt.Sprintf("quotes:%s:warned", day))
	}

	for _, name := range names {
		if _, err := c.counters.IncrWithTTL(ctx, c.counters.CounterKey(name), counterTTL); err != nil {
			c.logg.Error(c.logg.WithField(logCtx, "counter", name), "failed to bump quote counter", err)
			return processResult{nack: true}
		}
	}

	c.logg.Info(c.logg.WithProductID(logCtx, event.ProductID), "quote activity recorded")
	return processResult{ack: true}
}
