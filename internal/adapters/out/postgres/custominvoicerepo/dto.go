// Package custominvoicerepo persists customs invoice records.
package custominvoicerepo

import (
	"time"

	"orderflow/internal/core/domain/model/custominvoice"
)

type CustomInvoiceDTO struct {
	ID        int64 `gorm:"primaryKey"`
	OrderID   int64
	FileID    int64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CustomInvoiceDTO) TableName() string {
	return "custom_invoices"
}

func fromDomain(c *custominvoice.CustomInvoice) CustomInvoiceDTO {
	return CustomInvoiceDTO{
		ID:        c.ID(),
		OrderID:   c.OrderID(),
		FileID:    c.FileID(),
		Status:    string(c.Status()),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func toDomain(dto CustomInvoiceDTO) (*custominvoice.CustomInvoice, error) {
	return custominvoice.RestoreCustomInvoice(
		dto.ID, dto.OrderID, dto.FileID, custominvoice.Status(dto.Status), dto.CreatedAt, dto.UpdatedAt,
	)
}
