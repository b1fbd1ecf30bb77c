package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// InvoiceItemCommandHandler edits the invoice of an order. An item that does
// not belong to the order is NotFound.
type InvoiceItemCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewInvoiceItemCommandHandler(uowFactory OrderUoWFactory) InvoiceItemCommandHandler {
	return InvoiceItemCommandHandler{uowFactory: uowFactory}
}

// Handle returns the added or updated item, or nil after a delete.
func (h *InvoiceItemCommandHandler) Handle(ctx context.Context, cmd InvoiceItemCommand) (*order.InvoiceItem, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, orderNotFound(cmd.OrderID(), err)
	}

	var item *order.InvoiceItem
	switch cmd.action {
	case invoiceItemAdd:
		item, err = order.NewInvoiceItem(cmd.Name(), cmd.Amount(), cmd.IsExtraFee())
		if err == nil {
			err = aggregate.AddInvoiceItems(item)
		}
	case invoiceItemUpdate:
		item, err = aggregate.UpdateInvoiceItem(cmd.ItemID(), cmd.Name(), cmd.Amount(), cmd.IsExtraFee())
	case invoiceItemDelete:
		err = aggregate.RemoveInvoiceItem(cmd.ItemID())
	}
	if errs.IsKind(err, errs.KindNotFound) {
		return nil, errs.Wrap(errs.KindNotFound, err, "invoice item not found")
	}
	if err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return item, nil
}
