package commands

import (
	"context"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

const (
	customInvoiceMimeType = "application/pdf"
	customInvoiceFileKind = "PDF"
)

// RequestCustomInvoiceUploadCommandHandler issues a presigned upload for an
// order in VEHICLE_IN_CUSTOM_AGENCY and records it as a PENDING custom
// invoice. An existing record is pointed to the new file instead.
type RequestCustomInvoiceUploadCommandHandler struct {
	uowFactory UoWFactory
	files      ports.FileClient
}

func NewRequestCustomInvoiceUploadCommandHandler(uowFactory UoWFactory, files ports.FileClient) RequestCustomInvoiceUploadCommandHandler {
	return RequestCustomInvoiceUploadCommandHandler{uowFactory: uowFactory, files: files}
}

func (h *RequestCustomInvoiceUploadCommandHandler) Handle(
	ctx context.Context,
	cmd RequestCustomInvoiceUploadCommand,
) (ports.PresignedUpload, error) {
	if err := cmd.Validate(); err != nil {
		return ports.PresignedUpload{}, err
	}

	uow := h.uowFactory.Create()
	aggregate, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return ports.PresignedUpload{}, orderNotFound(cmd.OrderID(), err)
	}
	if err = aggregate.Status().Require(order.VehicleInCustomAgency); err != nil {
		return ports.PresignedUpload{}, err
	}

	vin := aggregate.Vehicle().VIN
	upload, err := h.files.CreatePresignedUpload(ctx, ports.PresignedUploadRequest{
		FileName: vin + "_custom_invoice.pdf",
		MimeType: customInvoiceMimeType,
		Private:  true,
		Folder:   vin,
		Kind:     customInvoiceFileKind,
	})
	if err != nil {
		return ports.PresignedUpload{}, err
	}

	if err = uow.Begin(ctx); err != nil {
		return ports.PresignedUpload{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.CustomInvoiceRepository()
	existing, err := repo.GetCurrentByOrderID(ctx, cmd.OrderID())
	switch {
	case err == nil:
		if err = existing.Replace(upload.FileID, now()); err != nil {
			return ports.PresignedUpload{}, err
		}
		err = repo.Update(ctx, existing)
	case errs.IsKind(err, errs.KindNotFound):
		var created *custominvoice.CustomInvoice
		created, err = custominvoice.NewCustomInvoice(cmd.OrderID(), upload.FileID, now())
		if err != nil {
			return ports.PresignedUpload{}, err
		}
		err = repo.Add(ctx, created)
	}
	if err != nil {
		return ports.PresignedUpload{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ports.PresignedUpload{}, err
	}

	return upload, nil
}
