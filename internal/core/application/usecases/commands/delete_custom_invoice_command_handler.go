package commands

import (
	"context"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/pkg/errs"
)

// DeleteCustomInvoiceCommandHandler removes the current custom invoice record
// of an order so that a new upload can be requested.
type DeleteCustomInvoiceCommandHandler struct {
	uowFactory UoWFactory
}

func NewDeleteCustomInvoiceCommandHandler(uowFactory UoWFactory) DeleteCustomInvoiceCommandHandler {
	return DeleteCustomInvoiceCommandHandler{uowFactory: uowFactory}
}

// Handle returns the deleted record. A record of another order is NotFound.
func (h *DeleteCustomInvoiceCommandHandler) Handle(
	ctx context.Context,
	cmd DeleteCustomInvoiceCommand,
) (*custominvoice.CustomInvoice, error) {
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

	if _, err := uow.OrderRepository().Get(ctx, cmd.OrderID()); err != nil {
		return nil, orderNotFound(cmd.OrderID(), err)
	}

	repo := uow.CustomInvoiceRepository()
	var (
		invoice *custominvoice.CustomInvoice
		err     error
	)
	if cmd.FileID() == 0 {
		invoice, err = repo.GetCurrentByOrderID(ctx, cmd.OrderID())
	} else {
		invoice, err = repo.GetByFileID(ctx, cmd.FileID())
		if err == nil && invoice.OrderID() != cmd.OrderID() {
			invoice, err = nil, errs.NotFound("custom invoice not found")
		}
	}
	if errs.IsKind(err, errs.KindNotFound) {
		return nil, errs.Wrap(errs.KindNotFound, err, "custom invoice not found")
	}
	if err != nil {
		return nil, err
	}

	if err = repo.Delete(ctx, invoice.ID()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return invoice, nil
}
