package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"orderflow/internal/adapters/out/postgres/pgerr"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	constraintLotID = "ux_orders_lot_id"
	constraintVIN   = "ux_orders_vin"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker changeTracker
}

// changeTracker is told about every written aggregate so pending changes are
// cleared only once the surrounding transaction commits.
type changeTracker interface {
	Track(aggregate interface{ ClearChanges() })
}

func NewGormOrderRepository(db *gorm.DB, tracker changeTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order, its invoice items and its pending history.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	dto := fromDomain(aggregate)
	if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
		return conflictOrErr(aggregate, err)
	}
	aggregate.AssignID(dto.ID)

	if err := r.saveItems(db, aggregate); err != nil {
		return err
	}
	if err := r.appendHistory(db, aggregate); err != nil {
		return err
	}

	r.tracker.Track(aggregate)
	return nil
}

// Update writes every column of the order, then reconciles invoice items and
// appends pending history entries.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	dto := fromDomain(aggregate)
	result := db.Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return conflictOrErr(aggregate, result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", dto.ID)
	}

	if removed := aggregate.RemovedInvoiceItemIDs(); len(removed) > 0 {
		err := db.Where("order_id = ? AND id IN ?", dto.ID, removed).Delete(&InvoiceItemDTO{}).Error
		if err != nil {
			return err
		}
	}
	if err := r.saveItems(db, aggregate); err != nil {
		return err
	}
	if err := r.appendHistory(db, aggregate); err != nil {
		return err
	}

	r.tracker.Track(aggregate)
	return nil
}

// Get loads the order with its invoice items. Inside a transaction the order
// row stays locked until commit.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&dto, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&OrderDTO{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", id)
	}
	return nil
}

func (r *GormOrderRepository) ExistsByLotID(ctx context.Context, lotID int64) (bool, error) {
	return r.exists(ctx, "lot_id = ?", lotID)
}

func (r *GormOrderRepository) ExistsByVIN(ctx context.Context, vin string) (bool, error) {
	return r.exists(ctx, "vin = ?", vin)
}

func (r *GormOrderRepository) exists(ctx context.Context, where string, value any) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM orders WHERE "+where+")", value).
		Scan(&exists).Error
	return exists, err
}

func (r *GormOrderRepository) saveItems(db *gorm.DB, aggregate *order.Order) error {
	for _, item := range aggregate.Items() {
		row := itemFromDomain(aggregate.ID(), item)
		if item.IsPersisted() {
			err := db.Model(&InvoiceItemDTO{}).
				Where("id = ? AND order_id = ?", row.ID, row.OrderID).
				Select("name", "amount", "is_extra_fee").
				Updates(&row).Error
			if err != nil {
				return err
			}
			continue
		}

		if err := db.Create(&row).Error; err != nil {
			return err
		}
		item.AssignID(row.ID)
	}
	return nil
}

func (r *GormOrderRepository) appendHistory(db *gorm.DB, aggregate *order.Order) error {
	pending := aggregate.PendingHistory()
	if len(pending) == 0 {
		return nil
	}

	rows := make([]StatusHistoryDTO, 0, len(pending))
	for _, change := range pending {
		rows = append(rows, StatusHistoryDTO{
			OrderID:   aggregate.ID(),
			Status:    change.Status.String(),
			ChangedAt: change.ChangedAt,
		})
	}
	return db.Create(&rows).Error
}

func conflictOrErr(aggregate *order.Order, err error) error {
	v := aggregate.Vehicle()
	switch {
	case pgerr.IsUniqueViolation(err, constraintLotID):
		return errs.Wrap(errs.KindConflict, err, fmt.Sprintf("order with lot id %d already exists", v.LotID))
	case pgerr.IsUniqueViolation(err, constraintVIN):
		return errs.Wrap(errs.KindConflict, err, fmt.Sprintf("order with vin %s already exists", v.VIN))
	case pgerr.IsUniqueViolation(err, ""):
		return errs.Wrap(errs.KindConflict, err, "order already exists")
	}
	return err
}
