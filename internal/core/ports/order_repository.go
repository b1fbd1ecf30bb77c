// Package ports defines the contracts between the order domain and the
// infrastructure that stores orders, talks to remote services and publishes
// events.
package ports

import (
	"context"

	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// The aggregate is stored together with its invoice items and status history.
type OrderRepository interface {
	// Add persists a new order with its invoice items and initial history.
	// A duplicate lot id or VIN surfaces as errs.KindConflict.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists scalar changes, new and changed invoice items, removed
	// invoice items and pending history entries.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its invoice items.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// Delete removes an order. Items, history and custom invoices cascade.
	Delete(ctx context.Context, id int64) error

	ExistsByLotID(ctx context.Context, lotID int64) (bool, error)
	ExistsByVIN(ctx context.Context, vin string) (bool, error)
}
