package custominvoicerepo

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/adapters/out/postgres/pgerr"
	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormCustomInvoiceRepository implements ports.CustomInvoiceRepository using GORM.
type GormCustomInvoiceRepository struct {
	db *gorm.DB
}

func NewGormCustomInvoiceRepository(db *gorm.DB) *GormCustomInvoiceRepository {
	return &GormCustomInvoiceRepository{db: db}
}

func (r *GormCustomInvoiceRepository) Add(ctx context.Context, invoice *custominvoice.CustomInvoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}

	dto := fromDomain(invoice)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err, "") {
			return errs.Wrap(errs.KindConflict, err, "custom invoice for this file already exists")
		}
		return err
	}

	invoice.AssignID(dto.ID)
	return nil
}

func (r *GormCustomInvoiceRepository) Update(ctx context.Context, invoice *custominvoice.CustomInvoice) error {
	if err := invoice.Validate(); err != nil {
		return err
	}

	dto := fromDomain(invoice)
	result := r.db.WithContext(ctx).Model(&CustomInvoiceDTO{}).
		Where("id = ?", dto.ID).
		Select("file_id", "status", "updated_at").
		Updates(&dto)
	if result.Error != nil {
		if pgerr.IsUniqueViolation(result.Error, "") {
			return errs.Wrap(errs.KindConflict, result.Error, "custom invoice for this file already exists")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("custom invoice", dto.ID)
	}
	return nil
}

func (r *GormCustomInvoiceRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&CustomInvoiceDTO{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("custom invoice", id)
	}
	return nil
}

// GetCurrentByOrderID prefers an AVAILABLE record, then the most recently updated one.
func (r *GormCustomInvoiceRepository) GetCurrentByOrderID(ctx context.Context, orderID int64) (*custominvoice.CustomInvoice, error) {
	var dto CustomInvoiceDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("CASE WHEN status = 'AVAILABLE' THEN 0 ELSE 1 END").
		Order("updated_at DESC").
		Order("id DESC").
		Take(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("custom invoice of order", orderID)
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormCustomInvoiceRepository) GetByFileID(ctx context.Context, fileID int64) (*custominvoice.CustomInvoice, error) {
	var dto CustomInvoiceDTO
	if err := r.db.WithContext(ctx).Take(&dto, "file_id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("custom invoice of file", fileID)
		}
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormCustomInvoiceRepository) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(custominvoice.Pending), cutoff).
		Delete(&CustomInvoiceDTO{})
	return result.RowsAffected, result.Error
}
