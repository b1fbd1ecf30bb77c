package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var (
	ErrChangeOrderStatusCommandIsNotConstructed = errors.New(
		"ChangeOrderStatusCommand must be created via NewChangeOrderStatusCommand constructor",
	)
	ErrAddTrackingLinkCommandIsNotConstructed = errors.New(
		"AddTrackingLinkCommand must be created via NewAddTrackingLinkCommand constructor",
	)
)

// StatusTransition names an operator driven step of the delivery pipeline.
type StatusTransition string

const (
	TransitionPublishInvoice      StatusTransition = "make-invoice-visible"
	TransitionMoveToCustomAgency  StatusTransition = "vehicle-in-custom-agency"
	TransitionAttachCustomInvoice StatusTransition = "custom-invoice-added"
	TransitionDeliver             StatusTransition = "delivered"
)

func (t StatusTransition) Validate() error {
	switch t {
	case TransitionPublishInvoice, TransitionMoveToCustomAgency, TransitionAttachCustomInvoice, TransitionDeliver:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("status transition", fmt.Errorf("%q is not supported", string(t)))
}

// ChangeOrderStatusCommand moves an order one step forward.
type ChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderID    int64
	transition StatusTransition

	guard guard.ConstructorGuard
}

func NewChangeOrderStatusCommand(orderID int64, transition StatusTransition) (ChangeOrderStatusCommand, error) {
	if err := errors.Join(positive("order id", orderID), transition.Validate()); err != nil {
		return ChangeOrderStatusCommand{}, err
	}

	return ChangeOrderStatusCommand{
		orderID:    orderID,
		transition: transition,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderStatusCommandIsNotConstructed)
}

func (c ChangeOrderStatusCommand) OrderID() int64 { return c.orderID }

func (c ChangeOrderStatusCommand) Transition() StatusTransition { return c.transition }

// AddTrackingLinkCommand sets or replaces the tracking link of an order.
type AddTrackingLinkCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	link    string

	guard guard.ConstructorGuard
}

func NewAddTrackingLinkCommand(orderID int64, link string) (AddTrackingLinkCommand, error) {
	if err := errors.Join(positive("order id", orderID), required("tracking link", link)); err != nil {
		return AddTrackingLinkCommand{}, err
	}

	return AddTrackingLinkCommand{
		orderID: orderID,
		link:    strings.TrimSpace(link),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AddTrackingLinkCommand) Validate() error {
	return c.guard.Validate(ErrAddTrackingLinkCommandIsNotConstructed)
}

func (c AddTrackingLinkCommand) OrderID() int64 { return c.orderID }

func (c AddTrackingLinkCommand) Link() string { return c.link }
