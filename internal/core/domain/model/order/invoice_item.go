package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

var ErrInvoiceItemIsNotConstructed = errors.New("InvoiceItem must be created via NewInvoiceItem constructor")

// InvoiceItem is one line of an order's invoice. Amounts are whole currency units.
type InvoiceItem struct {
	id         int64
	name       string
	amount     int64
	isExtraFee bool

	isConstructed bool
}

func NewInvoiceItem(name string, amount int64, isExtraFee bool) (*InvoiceItem, error) {
	item := &InvoiceItem{isExtraFee: isExtraFee, isConstructed: true}
	if err := errors.Join(item.setName(name), item.setAmount(amount)); err != nil {
		return nil, err
	}
	return item, nil
}

// RestoreInvoiceItem rebuilds a persisted item.
func RestoreInvoiceItem(id int64, name string, amount int64, isExtraFee bool) (*InvoiceItem, error) {
	item, err := NewInvoiceItem(name, amount, isExtraFee)
	if err != nil {
		return nil, err
	}
	item.id = id
	return item, nil
}

func (i *InvoiceItem) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrInvoiceItemIsNotConstructed
	}
	return nil
}

func (i *InvoiceItem) ID() int64 { return i.id }
func (i *InvoiceItem) Name() string { return i.name }
func (i *InvoiceItem) Amount() int64 { return i.amount }
func (i *InvoiceItem) IsExtraFee() bool { return i.isExtraFee }
func (i *InvoiceItem) IsPersisted() bool { return i.id != 0 }

// AssignID is called by persistence once the row is inserted.
func (i *InvoiceItem) AssignID(id int64) {
	i.id = id
}

func (i *InvoiceItem) change(name string, amount int64, isExtraFee bool) error {
	if err := errors.Join(i.setName(name), i.setAmount(amount)); err != nil {
		return err
	}
	i.isExtraFee = isExtraFee
	return nil
}

func (i *InvoiceItem) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("invoice item name")
	}
	i.name = name
	return nil
}

func (i *InvoiceItem) setAmount(amount int64) error {
	if amount < 0 {
		return errs.NewValueIsInvalidErrorWithCause("invoice item amount", fmt.Errorf("%d is negative", amount))
	}
	i.amount = amount
	return nil
}
