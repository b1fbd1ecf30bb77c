package commands

import (
	"errors"
	"strings"

	"orderflow/internal/pkg/guard"
)

var ErrChooseDestinationCommandIsNotConstructed = errors.New(
	"ChooseDestinationCommand must be created via NewChooseDestinationCommand constructor",
)

// ChooseDestinationCommand selects the port an order is shipped to.
// The caller must own the order.
type ChooseDestinationCommand struct { //nolint:recvcheck //using for validation
	orderID       int64
	destinationID int64
	userUUID      string

	guard guard.ConstructorGuard
}

func NewChooseDestinationCommand(orderID, destinationID int64, userUUID string) (ChooseDestinationCommand, error) {
	cmd := ChooseDestinationCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		positive("order id", orderID),
		positive("destination id", destinationID),
		required("user uuid", userUUID),
	); err != nil {
		return ChooseDestinationCommand{}, err
	}

	cmd.orderID = orderID
	cmd.destinationID = destinationID
	cmd.userUUID = strings.TrimSpace(userUUID)
	return cmd, nil
}

func (c ChooseDestinationCommand) Validate() error {
	return c.guard.Validate(ErrChooseDestinationCommandIsNotConstructed)
}

func (c ChooseDestinationCommand) OrderID() int64 { return c.orderID }

func (c ChooseDestinationCommand) DestinationID() int64 { return c.destinationID }

func (c ChooseDestinationCommand) UserUUID() string { return c.userUUID }
