package commands

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrInvoiceItemCommandIsNotConstructed = errors.New(
	"InvoiceItemCommand must be created via NewAddInvoiceItemCommand, NewUpdateInvoiceItemCommand or NewDeleteInvoiceItemCommand",
)

type invoiceItemAction int

const (
	invoiceItemAdd invoiceItemAction = iota + 1
	invoiceItemUpdate
	invoiceItemDelete
)

// InvoiceItemCommand adds, changes or removes one line of an order invoice.
type InvoiceItemCommand struct { //nolint:recvcheck //using for validation
	action     invoiceItemAction
	orderID    int64
	itemID     int64
	name       string
	amount     int64
	isExtraFee bool

	guard guard.ConstructorGuard
}

func NewAddInvoiceItemCommand(orderID int64, name string, amount int64, isExtraFee bool) (InvoiceItemCommand, error) {
	if err := errors.Join(positive("order id", orderID), validateItem(name, amount)); err != nil {
		return InvoiceItemCommand{}, err
	}
	return InvoiceItemCommand{
		action:     invoiceItemAdd,
		orderID:    orderID,
		name:       strings.TrimSpace(name),
		amount:     amount,
		isExtraFee: isExtraFee,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func NewUpdateInvoiceItemCommand(orderID, itemID int64, name string, amount int64, isExtraFee bool) (InvoiceItemCommand, error) {
	if err := errors.Join(positive("order id", orderID), positive("item id", itemID), validateItem(name, amount)); err != nil {
		return InvoiceItemCommand{}, err
	}
	return InvoiceItemCommand{
		action:     invoiceItemUpdate,
		orderID:    orderID,
		itemID:     itemID,
		name:       strings.TrimSpace(name),
		amount:     amount,
		isExtraFee: isExtraFee,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func NewDeleteInvoiceItemCommand(orderID, itemID int64) (InvoiceItemCommand, error) {
	if err := errors.Join(positive("order id", orderID), positive("item id", itemID)); err != nil {
		return InvoiceItemCommand{}, err
	}
	return InvoiceItemCommand{
		action:  invoiceItemDelete,
		orderID: orderID,
		itemID:  itemID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c InvoiceItemCommand) Validate() error {
	return c.guard.Validate(ErrInvoiceItemCommandIsNotConstructed)
}

func (c InvoiceItemCommand) OrderID() int64 { return c.orderID }

func (c InvoiceItemCommand) ItemID() int64 { return c.itemID }

func (c InvoiceItemCommand) Name() string { return c.name }

func (c InvoiceItemCommand) Amount() int64 { return c.amount }

func (c InvoiceItemCommand) IsExtraFee() bool { return c.isExtraFee }

func validateItem(name string, amount int64) error {
	if amount < 0 {
		return errors.Join(
			required("invoice item name", name),
			errs.NewValueIsInvalidErrorWithCause("invoice item amount", fmt.Errorf("%d is negative", amount)),
		)
	}
	return required("invoice item name", name)
}
