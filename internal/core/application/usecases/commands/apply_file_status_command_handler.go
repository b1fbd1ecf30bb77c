package commands

import (
	"context"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/pkg/errs"
)

// FileStatusOutcome tells the caller what an upload report changed.
type FileStatusOutcome string

const (
	FileStatusMarkedAvailable FileStatusOutcome = "marked_available"
	FileStatusDeleted         FileStatusOutcome = "deleted"
	FileStatusIgnored         FileStatusOutcome = "ignored"
	FileStatusUnknownFile     FileStatusOutcome = "unknown_file"
)

// ApplyFileStatusCommandHandler marks the custom invoice of the file as
// AVAILABLE or deletes it when the upload failed. Other statuses and files
// that are not custom invoices change nothing.
type ApplyFileStatusCommandHandler struct {
	uowFactory CustomInvoiceUoWFactory
}

func NewApplyFileStatusCommandHandler(uowFactory CustomInvoiceUoWFactory) ApplyFileStatusCommandHandler {
	return ApplyFileStatusCommandHandler{uowFactory: uowFactory}
}

func (h *ApplyFileStatusCommandHandler) Handle(ctx context.Context, cmd ApplyFileStatusCommand) (FileStatusOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}
	if cmd.Status() != custominvoice.FileAvailable && cmd.Status() != custominvoice.FileFailed {
		return FileStatusIgnored, nil
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CustomInvoiceRepository()
	invoice, err := repo.GetByFileID(ctx, cmd.FileID())
	if errs.IsKind(err, errs.KindNotFound) {
		return FileStatusUnknownFile, nil
	}
	if err != nil {
		return "", err
	}

	outcome := FileStatusDeleted
	if cmd.Status() == custominvoice.FileAvailable {
		outcome = FileStatusMarkedAvailable
		invoice.MarkAvailable(now())
		err = repo.Update(ctx, invoice)
	} else {
		err = repo.Delete(ctx, invoice.ID())
	}
	if err != nil {
		return "", err
	}

	if err = uow.Commit(ctx); err != nil {
		return "", err
	}
	return outcome, nil
}
