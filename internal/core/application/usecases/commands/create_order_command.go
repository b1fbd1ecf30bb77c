package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// PricingSelection holds the calculator reference data chosen for a new order.
type PricingSelection struct {
	LocationID    int64
	FeeTypeID     int64
	TerminalID    int64
	DestinationID int64
}

// CreateOrderCommand is a request to register an order with an explicit
// pricing selection.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(vehicle, "u1", PricingSelection{
//	    LocationID: 10, FeeTypeID: 2, TerminalID: 3, DestinationID: 5,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	vehicle   order.Vehicle
	userUUID  string
	selection PricingSelection

	guard guard.ConstructorGuard
}

func NewCreateOrderCommand(vehicle order.Vehicle, userUUID string, selection PricingSelection) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setVehicle(vehicle),
		cmd.setUserUUID(userUUID),
		cmd.setSelection(selection),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Vehicle() order.Vehicle { return c.vehicle }

func (c CreateOrderCommand) UserUUID() string { return c.userUUID }

func (c CreateOrderCommand) Selection() PricingSelection { return c.selection }

func (c *CreateOrderCommand) setVehicle(v order.Vehicle) error {
	v.VIN = strings.TrimSpace(v.VIN)
	if err := errors.Join(
		positive("lot id", v.LotID),
		required("vin", v.VIN),
		required("vehicle name", v.Name),
		v.Auction.Validate(),
		v.Type.Validate(),
	); err != nil {
		return err
	}
	if v.Value < 0 {
		return errs.NewValueIsInvalidErrorWithCause("vehicle value", fmt.Errorf("%d is negative", v.Value))
	}

	c.vehicle = v
	return nil
}

func (c *CreateOrderCommand) setUserUUID(userUUID string) error {
	if err := required("user uuid", userUUID); err != nil {
		return err
	}

	c.userUUID = strings.TrimSpace(userUUID)
	return nil
}

func (c *CreateOrderCommand) setSelection(s PricingSelection) error {
	if err := errors.Join(
		positive("location id", s.LocationID),
		positive("fee type id", s.FeeTypeID),
		positive("terminal id", s.TerminalID),
		positive("destination id", s.DestinationID),
	); err != nil {
		return err
	}

	c.selection = s
	return nil
}
