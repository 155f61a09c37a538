package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

// QuoteComputedEvent is published after a quote resolves successfully.
type QuoteComputedEvent struct {
	QuoteID             string   `json:"quote_id"`
	ProductID           string   `json:"product_id"`
	RequestedQty        int      `json:"requested_qty"`
	PricedQty           int      `json:"priced_qty"`
	PricingMode         string   `json:"pricing_mode"`
	UnitPrice           string   `json:"unit_price"`
	AttributeAdjustment string   `json:"attribute_adjustment"`
	TotalPrice          string   `json:"total_price"`
	Roles               []string `json:"roles,omitempty"`
	WarningCount        int      `json:"warning_count"`
	ComputedAt          string   `json:"computed_at"`
}

// EventSink receives quote lifecycle events.
type EventSink interface {
	PublishQuoteComputed(ctx context.Context, event QuoteComputedEvent) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

type pubsubSink struct {
	publisher messagePublisher
	timeout   time.Duration
}

// NewPubSubSink adapts a Pub/Sub publisher into an EventSink. Publishes
// block until the server acks or the timeout elapses.
func NewPubSubSink(publisher messagePublisher, timeout time.Duration) EventSink {
	return &pubsubSink{publisher: publisher, timeout: timeout}
}

func (s *pubsubSink) PublishQuoteComputed(ctx context.Context, event QuoteComputedEvent) error {
	if s.publisher == nil {
		return fmt.Errorf("publisher not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal quote event: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result := s.publisher.Publish(ctx, &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": "quote.computed",
			"product_id": event.ProductID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish quote event: %w", err)
	}
	return nil
}
