package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

// ProductUpdatedEvent is published after a pricing configuration changes.
type ProductUpdatedEvent struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	PricingMode string `json:"pricing_mode"`
	UpdatedAt   string `json:"updated_at"`
}

// EventSink receives catalog lifecycle events.
type EventSink interface {
	PublishProductUpdated(ctx context.Context, event ProductUpdatedEvent) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) *gcppubsub.PublishResult
}

type pubsubSink struct {
	publisher messagePublisher
	timeout   time.Duration
}

// NewPubSubSink adapts a Pub/Sub publisher into an EventSink.
func NewPubSubSink(publisher messagePublisher, timeout time.Duration) EventSink {
	return &pubsubSink{publisher: publisher, timeout: timeout}
}

func (s *pubsubSink) PublishProductUpdated(ctx context.Context, event ProductUpdatedEvent) error {
	if s.publisher == nil {
		return fmt.Errorf("publisher not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal catalog event: %w", err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result := s.publisher.Publish(ctx, &gcppubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"event_type": "catalog.product_updated",
			"product_id": event.ProductID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish catalog event: %w", err)
	}
	return nil
}
