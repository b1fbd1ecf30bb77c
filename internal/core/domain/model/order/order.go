package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	ErrTrackingLinkIsRequired = errs.NewValueIsRequiredError("tracking link")
)

// Order is the aggregate root of a shipping order. It owns its invoice items and
// records every status change it goes through.
//
// Invariants:
//   - lot id and VIN identify the order (uniqueness is enforced by persistence)
//   - status only moves forward along the delivery pipeline (see Status)
//   - invoice items generated on destination choice are created at most once
//
// Changes made since the order was loaded (new history entries, removed invoice
// items) are kept until persistence calls ClearChanges.
type Order struct {
	id            int64
	vehicle       Vehicle
	pricing       Pricing
	owner         Owner
	autoGenerated bool
	trackingLink  string
	status        Status
	items         []*InvoiceItem
	createdAt     time.Time
	updatedAt     time.Time

	pendingHistory []StatusChange
	removedItemIDs []int64

	isConstructed bool
}

// NewOrder creates an order in Won status and records the initial history entry.
func NewOrder(vehicle Vehicle, pricing Pricing, owner Owner, autoGenerated bool, now time.Time) (*Order, error) {
	if err := vehicle.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(owner.UUID) == "" {
		return nil, errs.NewValueIsRequiredError("user uuid")
	}

	o := &Order{
		vehicle:       vehicle.normalized(),
		pricing:       pricing,
		owner:         owner,
		autoGenerated: autoGenerated,
		status:        Won,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
	o.pendingHistory = append(o.pendingHistory, StatusChange{Status: Won, ChangedAt: now})
	return o, nil
}

// Snapshot carries every persisted attribute of an order.
type Snapshot struct {
	ID            int64
	Vehicle       Vehicle
	Pricing       Pricing
	Owner         Owner
	AutoGenerated bool
	TrackingLink  string
	Status        Status
	Items         []*InvoiceItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RestoreOrder rebuilds an order loaded from persistence.
func RestoreOrder(s Snapshot) (*Order, error) {
	if err := s.Status.Validate(); err != nil {
		return nil, err
	}
	if err := s.Vehicle.validate(); err != nil {
		return nil, err
	}
	for _, item := range s.Items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	return &Order{
		id:            s.ID,
		vehicle:       s.Vehicle.normalized(),
		pricing:       s.Pricing,
		owner:         s.Owner,
		autoGenerated: s.AutoGenerated,
		trackingLink:  s.TrackingLink,
		status:        s.Status,
		items:         s.Items,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		isConstructed: true,
	}, nil
}

// Validate checks the attributes an order cannot exist without.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() int64 { return o.id }
func (o *Order) Vehicle() Vehicle { return o.vehicle }
func (o *Order) Pricing() Pricing { return o.pricing }
func (o *Order) Owner() Owner { return o.owner }
func (o *Order) AutoGenerated() bool { return o.autoGenerated }
func (o *Order) TrackingLink() string { return o.trackingLink }
func (o *Order) Status() Status { return o.status }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }
func (o *Order) HasDestination() bool { return o.pricing.DestinationID != 0 }
func (o *Order) IsOwnedBy(uuid string) bool { return o.owner.UUID == uuid }

// Items returns the invoice items in insertion order.
func (o *Order) Items() []*InvoiceItem {
	items := make([]*InvoiceItem, len(o.items))
	copy(items, o.items)
	return items
}

// AssignID is called by persistence once the order row is inserted.
func (o *Order) AssignID(id int64) {
	o.id = id
}

// ChooseDestination selects the shipping destination. It returns the previous
// status and whether this was the first time a destination was chosen.
// Re-selection while PortChosen records no history entry.
func (o *Order) ChooseDestination(destinationID int64, destinationName string, now time.Time) (Status, bool, error) {
	next, err := o.status.ChoosePort()
	if err != nil {
		return Unknown, false, err
	}
	if destinationID <= 0 {
		return Unknown, false, errs.NewValueIsInvalidErrorWithCause("destination id", fmt.Errorf("%d is not positive", destinationID))
	}

	first := !o.HasDestination()
	o.pricing.DestinationID = destinationID
	o.pricing.DestinationName = destinationName
	if o.status == next {
		o.updatedAt = now
		return o.status, first, nil
	}
	return o.moveTo(next, now), first, nil
}

// PublishInvoice makes the invoice visible to the customer.
func (o *Order) PublishInvoice(now time.Time) (Status, error) {
	next, err := o.status.PublishInvoice()
	if err != nil {
		return Unknown, err
	}
	return o.moveTo(next, now), nil
}

// AddTrackingLink sets or replaces the shipment tracking link.
func (o *Order) AddTrackingLink(link string, now time.Time) (Status, error) {
	next, err := o.status.AddTracking()
	if err != nil {
		return Unknown, err
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return Unknown, ErrTrackingLinkIsRequired
	}
	o.trackingLink = link
	return o.moveTo(next, now), nil
}

// MoveToCustomAgency records that the vehicle reached customs. It returns
// the previous status.
func (o *Order) MoveToCustomAgency(now time.Time) (Status, error) {
	next, err := o.status.MoveToCustomAgency()
	if err != nil {
		return Unknown, err
	}
	return o.moveTo(next, now), nil
}

// AttachCustomInvoice requires the customs invoice to be uploaded and confirmed.
func (o *Order) AttachCustomInvoice(invoice *custominvoice.CustomInvoice, now time.Time) (Status, error) {
	next, err := o.status.AttachCustomInvoice()
	if err != nil {
		return Unknown, err
	}
	if invoice == nil {
		return Unknown, errs.BadRequest("custom invoice is not requested or uploaded yet")
	}
	if !invoice.IsAvailable() {
		return Unknown, errs.BadRequest("custom invoice is not uploaded yet")
	}
	return o.moveTo(next, now), nil
}

// Deliver closes the pipeline. Delivered accepts no further transitions.
func (o *Order) Deliver(now time.Time) (Status, error) {
	next, err := o.status.Deliver()
	if err != nil {
		return Unknown, err
	}
	return o.moveTo(next, now), nil
}

// moveTo sets the status, records a pending history entry and returns the
// previous status.
func (o *Order) moveTo(next Status, now time.Time) Status {
	previous := o.status
	o.status = next
	o.updatedAt = now
	o.pendingHistory = append(o.pendingHistory, StatusChange{Status: next, ChangedAt: now})
	return previous
}

// AddInvoiceItems appends items to the invoice.
func (o *Order) AddInvoiceItems(items ...*InvoiceItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = append(o.items, items...)
	return nil
}

// UpdateInvoiceItem changes an existing item of this order.
func (o *Order) UpdateInvoiceItem(itemID int64, name string, amount int64, isExtraFee bool) (*InvoiceItem, error) {
	item := o.findItem(itemID)
	if item == nil {
		return nil, errs.NewObjectNotFoundError("invoice item", itemID)
	}
	if err := item.change(name, amount, isExtraFee); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveInvoiceItem deletes an item of this order.
func (o *Order) RemoveInvoiceItem(itemID int64) error {
	for i, item := range o.items {
		if item.IsPersisted() && item.ID() == itemID {
			o.items = append(o.items[:i], o.items[i+1:]...)
			o.removedItemIDs = append(o.removedItemIDs, itemID)
			return nil
		}
	}
	return errs.NewObjectNotFoundError("invoice item", itemID)
}

func (o *Order) findItem(itemID int64) *InvoiceItem {
	for _, item := range o.items {
		if item.IsPersisted() && item.ID() == itemID {
			return item
		}
	}
	return nil
}

// PendingHistory returns status changes not yet persisted.
func (o *Order) PendingHistory() []StatusChange {
	return o.pendingHistory
}

// RemovedInvoiceItemIDs returns ids of items removed since load.
func (o *Order) RemovedInvoiceItemIDs() []int64 {
	return o.removedItemIDs
}

// ClearChanges is called by persistence after the pending changes are written.
func (o *Order) ClearChanges() {
	o.pendingHistory = nil
	o.removedItemIDs = nil
}
