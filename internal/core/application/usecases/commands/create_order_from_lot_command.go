package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrCreateOrderFromLotCommandIsNotConstructed = errors.New(
	"CreateOrderFromLotCommand must be created via NewCreateOrderFromLotCommand constructor",
)

// CreateOrderFromLotCommand is a request to create an order for a won bid.
// The vehicle and pricing are derived from the auction lot snapshot.
type CreateOrderFromLotCommand struct { //nolint:recvcheck //using for validation
	lotID     int64
	auction   kernel.Auction
	userUUID  string
	bidAmount int64

	guard guard.ConstructorGuard
}

func NewCreateOrderFromLotCommand(
	lotID int64,
	auction kernel.Auction,
	userUUID string,
	bidAmount int64,
) (CreateOrderFromLotCommand, error) {
	cmd := CreateOrderFromLotCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setLotID(lotID),
		cmd.setAuction(auction),
		cmd.setUserUUID(userUUID),
		cmd.setBidAmount(bidAmount),
	); err != nil {
		return CreateOrderFromLotCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderFromLotCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderFromLotCommandIsNotConstructed)
}

func (c CreateOrderFromLotCommand) LotID() int64 { return c.lotID }

func (c CreateOrderFromLotCommand) Auction() kernel.Auction { return c.auction }

func (c CreateOrderFromLotCommand) UserUUID() string { return c.userUUID }

// BidAmount is zero when the event did not carry one.
func (c CreateOrderFromLotCommand) BidAmount() int64 { return c.bidAmount }

func (c *CreateOrderFromLotCommand) setLotID(lotID int64) error {
	if err := positive("lot id", lotID); err != nil {
		return err
	}
	c.lotID = lotID
	return nil
}

func (c *CreateOrderFromLotCommand) setAuction(auction kernel.Auction) error {
	if err := auction.Validate(); err != nil {
		return err
	}
	c.auction = auction
	return nil
}

func (c *CreateOrderFromLotCommand) setUserUUID(userUUID string) error {
	if err := required("user uuid", userUUID); err != nil {
		return err
	}
	c.userUUID = strings.TrimSpace(userUUID)
	return nil
}

func (c *CreateOrderFromLotCommand) setBidAmount(bidAmount int64) error {
	if bidAmount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("bid amount", fmt.Errorf("%d is negative", bidAmount))
	}
	c.bidAmount = bidAmount
	return nil
}
