// Package notifications tells customers about order status changes by
// publishing order.status_updated events for the notification service.
package notifications

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/logger"
)

const RoutingKeyStatusUpdated = "order.status_updated"

// Delivery channels understood by the notification service.
const (
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelTelegram = "telegram"
)

// StatusUpdated is the body of an order.status_updated event.
type StatusUpdated struct {
	UserUUID                 string `json:"user_uuid"`
	NewOrderStatus           string `json:"new_order_status"`
	PreviousOrderStatus      string `json:"previous_order_status"`
	NewOrderStatusHuman      string `json:"new_order_status_human"`
	PreviousOrderStatusHuman string `json:"previous_order_status_human"`
	OrderID                  int64  `json:"order_id"`
	VIN                      string `json:"vin"`
	VehicleTitle             string `json:"vehicle_title"`
	Auction                  string `json:"auction"`
	LotID                    int64  `json:"lot_id"`
	Email                    string `json:"email"`
	PhoneNumber              string `json:"phone_number"`
	Destination              string `json:"destination"`
	UserName                 string `json:"user_name,omitempty"`
	UserEmail                string `json:"user_email,omitempty"`
	UserPhone                string `json:"user_phone,omitempty"`
}

var _ ports.StatusNotifier = (*Dispatcher)(nil)

// Dispatcher publishes status change events. It never fails the caller:
// identity and publish errors are logged.
type Dispatcher struct {
	identity  ports.IdentityClient
	publisher ports.EventPublisher
	log       *logger.Logger
}

func NewDispatcher(identity ports.IdentityClient, publisher ports.EventPublisher, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{identity: identity, publisher: publisher, log: log}
}

// StatusChanged sends one telegram event when the order leaves WON and one
// event per email and sms channel otherwise.
func (d *Dispatcher) StatusChanged(ctx context.Context, o *order.Order, previous order.Status) {
	ctx = d.log.WithFields(ctx, map[string]any{
		"order_id":        o.ID(),
		"previous_status": previous.String(),
		"new_status":      o.Status().String(),
	})

	owner := o.Owner()
	var user ports.User
	if d.identity != nil {
		found, err := d.identity.GetUser(ctx, owner.UUID)
		if err != nil {
			d.log.Error(d.log.WithField(ctx, "user_uuid", owner.UUID),
				"failed to fetch user info for status change notification", err)
		} else {
			user = found
		}
	}

	vehicle := o.Vehicle()
	base := StatusUpdated{
		UserUUID:                 owner.UUID,
		NewOrderStatus:           o.Status().String(),
		PreviousOrderStatus:      previous.String(),
		NewOrderStatusHuman:      o.Status().Human(),
		PreviousOrderStatusHuman: previous.Human(),
		OrderID:                  o.ID(),
		VIN:                      vehicle.VIN,
		VehicleTitle:             vehicle.Name,
		Auction:                  vehicle.Auction.String(),
		LotID:                    vehicle.LotID,
		Email:                    user.Email,
		PhoneNumber:              user.PhoneNumber,
	}

	for _, payload := range payloadsFor(base, previous, user) {
		if err := d.publisher.Publish(ctx, RoutingKeyStatusUpdated, payload); err != nil {
			d.log.Error(d.log.WithField(ctx, "destination", payload.Destination),
				"failed to publish order status update notification", err)
		}
	}
}

func payloadsFor(base StatusUpdated, previous order.Status, user ports.User) []StatusUpdated {
	if previous == order.Won {
		telegram := base
		telegram.Destination = ChannelTelegram
		telegram.UserName = userName(user)
		telegram.UserEmail = user.Email
		telegram.UserPhone = user.PhoneNumber
		return []StatusUpdated{telegram}
	}

	payloads := make([]StatusUpdated, 0, 2)
	for _, channel := range []string{ChannelEmail, ChannelSMS} {
		p := base
		p.Destination = channel
		payloads = append(payloads, p)
	}
	return payloads
}

func userName(user ports.User) string {
	if user.UUID == "" && user.Username == "" {
		return ""
	}
	return user.DisplayName()
}
