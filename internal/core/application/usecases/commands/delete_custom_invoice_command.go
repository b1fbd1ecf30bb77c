package commands

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrDeleteCustomInvoiceCommandIsNotConstructed = errors.New(
	"DeleteCustomInvoiceCommand must be created via NewDeleteCustomInvoiceCommand constructor",
)

// DeleteCustomInvoiceCommand removes the current custom invoice of an order
// or, when a file id is given, the record of that file.
type DeleteCustomInvoiceCommand struct { //nolint:recvcheck //using for validation
	orderID int64
	fileID  int64

	guard guard.ConstructorGuard
}

// NewDeleteCustomInvoiceCommand accepts fileID 0 to target the current invoice.
func NewDeleteCustomInvoiceCommand(orderID, fileID int64) (DeleteCustomInvoiceCommand, error) {
	if err := positive("order id", orderID); err != nil {
		return DeleteCustomInvoiceCommand{}, err
	}
	if fileID < 0 {
		return DeleteCustomInvoiceCommand{}, positive("file id", fileID)
	}
	return DeleteCustomInvoiceCommand{orderID: orderID, fileID: fileID, guard: guard.NewConstructorGuard()}, nil
}

func (c DeleteCustomInvoiceCommand) Validate() error {
	return c.guard.Validate(ErrDeleteCustomInvoiceCommandIsNotConstructed)
}

func (c DeleteCustomInvoiceCommand) OrderID() int64 { return c.orderID }

func (c DeleteCustomInvoiceCommand) FileID() int64 { return c.fileID }
