package commands

import (
	"context"
)

// PurgeStaleCustomInvoicesCommandHandler deletes PENDING custom invoices whose
// upload was requested before the command's cutoff.
type PurgeStaleCustomInvoicesCommandHandler struct {
	uowFactory CustomInvoiceUoWFactory
}

func NewPurgeStaleCustomInvoicesCommandHandler(uowFactory CustomInvoiceUoWFactory) PurgeStaleCustomInvoicesCommandHandler {
	return PurgeStaleCustomInvoicesCommandHandler{uowFactory: uowFactory}
}

// Handle returns the number of removed records.
func (h *PurgeStaleCustomInvoicesCommandHandler) Handle(ctx context.Context, cmd PurgeStaleCustomInvoicesCommand) (int64, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	removed, err := uow.CustomInvoiceRepository().DeletePendingBefore(ctx, cmd.Cutoff())
	if err != nil {
		return 0, err
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}
	return removed, nil
}
