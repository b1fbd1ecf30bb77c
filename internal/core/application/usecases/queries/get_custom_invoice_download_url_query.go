package queries

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetCustomInvoiceDownloadURLQueryIsNotConstructed = errors.New(
	"GetCustomInvoiceDownloadURLQuery must be created via NewGetCustomInvoiceDownloadURLQuery constructor",
)

type GetCustomInvoiceDownloadURLQuery struct {
	orderID  int64
	userUUID string

	guard guard.ConstructorGuard
}

func NewGetCustomInvoiceDownloadURLQuery(orderID int64, userUUID string) (GetCustomInvoiceDownloadURLQuery, error) {
	if orderID <= 0 {
		return GetCustomInvoiceDownloadURLQuery{}, errs.NewValueIsRequiredError("order id")
	}
	return GetCustomInvoiceDownloadURLQuery{orderID: orderID, userUUID: userUUID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetCustomInvoiceDownloadURLQuery) Validate() error {
	return q.guard.Validate(ErrGetCustomInvoiceDownloadURLQueryIsNotConstructed)
}

// GetCustomInvoiceDownloadURLQueryHandler resolves a download link for the
// current custom invoice of an order. The upload must be confirmed first.
type GetCustomInvoiceDownloadURLQueryHandler struct {
	db    *gorm.DB
	files ports.FileClient
}

func NewGetCustomInvoiceDownloadURLQueryHandler(db *gorm.DB, files ports.FileClient) GetCustomInvoiceDownloadURLQueryHandler {
	return GetCustomInvoiceDownloadURLQueryHandler{db: db, files: files}
}

func (h GetCustomInvoiceDownloadURLQueryHandler) Handle(
	ctx context.Context,
	query GetCustomInvoiceDownloadURLQuery,
) (ports.Download, error) {
	if err := query.Validate(); err != nil {
		return ports.Download{}, err
	}

	if _, err := loadSummary(ctx, h.db, query.orderID, query.userUUID); err != nil {
		return ports.Download{}, err
	}

	var current struct {
		FileID int64
		Status string
	}
	result := h.db.WithContext(ctx).Raw(`
		SELECT file_id, status
		FROM custom_invoices
		WHERE order_id = ?
		ORDER BY CASE WHEN status = 'AVAILABLE' THEN 0 ELSE 1 END, updated_at DESC, id DESC
		LIMIT 1
	`, query.orderID).Scan(&current)
	if result.Error != nil {
		return ports.Download{}, result.Error
	}
	if result.RowsAffected == 0 {
		return ports.Download{}, errs.NotFound("custom invoice not found")
	}
	if custominvoice.Status(current.Status) != custominvoice.Available {
		return ports.Download{}, errs.BadRequest("custom invoice is not uploaded yet")
	}

	download, err := h.files.GetDownloadURL(ctx, current.FileID)
	if errs.IsKind(err, errs.KindNotFound) {
		return ports.Download{}, errs.Wrap(errs.KindNotFound, err, "custom invoice file not found")
	}
	if err != nil {
		return ports.Download{}, err
	}
	return download, nil
}
