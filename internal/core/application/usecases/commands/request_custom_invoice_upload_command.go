package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrRequestCustomInvoiceUploadCommandIsNotConstructed = errors.New(
	"RequestCustomInvoiceUploadCommand must be created via NewRequestCustomInvoiceUploadCommand constructor",
)

// RequestCustomInvoiceUploadCommand asks the file service for an upload
// target for the customs invoice PDF of an order.
type RequestCustomInvoiceUploadCommand struct { //nolint:recvcheck //using for validation
	orderID int64

	guard guard.ConstructorGuard
}

func NewRequestCustomInvoiceUploadCommand(orderID int64) (RequestCustomInvoiceUploadCommand, error) {
	if err := positive("order id", orderID); err != nil {
		return RequestCustomInvoiceUploadCommand{}, err
	}
	return RequestCustomInvoiceUploadCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c RequestCustomInvoiceUploadCommand) Validate() error {
	return c.guard.Validate(ErrRequestCustomInvoiceUploadCommandIsNotConstructed)
}

func (c RequestCustomInvoiceUploadCommand) OrderID() int64 { return c.orderID }
