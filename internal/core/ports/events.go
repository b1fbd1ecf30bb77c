package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// EventPublisher publishes a payload to the message bus under a routing key.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// StatusNotifier is told about every committed status transition. It never
// fails the transition.
type StatusNotifier interface {
	StatusChanged(ctx context.Context, aggregate *order.Order, previous order.Status)
}
