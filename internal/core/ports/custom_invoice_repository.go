package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/custominvoice"
)

// CustomInvoiceRepository stores customs invoice records.
type CustomInvoiceRepository interface {
	Add(ctx context.Context, invoice *custominvoice.CustomInvoice) error
	Update(ctx context.Context, invoice *custominvoice.CustomInvoice) error
	Delete(ctx context.Context, id int64) error

	// GetCurrentByOrderID returns the record that counts as the order's
	// custom invoice: AVAILABLE is preferred over PENDING, newest first.
	GetCurrentByOrderID(ctx context.Context, orderID int64) (*custominvoice.CustomInvoice, error)

	GetByFileID(ctx context.Context, fileID int64) (*custominvoice.CustomInvoice, error)

	// DeletePendingBefore removes PENDING records created before the cutoff
	// and returns how many were removed.
	DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
