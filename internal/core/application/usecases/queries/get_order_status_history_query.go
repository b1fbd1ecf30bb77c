package queries

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetOrderStatusHistoryQueryIsNotConstructed = errors.New(
	"GetOrderStatusHistoryQuery must be created via NewGetOrderStatusHistoryQuery constructor",
)

type GetOrderStatusHistoryQuery struct {
	orderID  int64
	userUUID string

	guard guard.ConstructorGuard
}

func NewGetOrderStatusHistoryQuery(orderID int64, userUUID string) (GetOrderStatusHistoryQuery, error) {
	if orderID <= 0 {
		return GetOrderStatusHistoryQuery{}, errs.NewValueIsRequiredError("order id")
	}
	return GetOrderStatusHistoryQuery{orderID: orderID, userUUID: userUUID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderStatusHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderStatusHistoryQueryIsNotConstructed)
}

type StatusHistoryEntry struct {
	Status      string    `json:"status"`
	StatusHuman string    `json:"status_human" gorm:"-"`
	ChangedAt   time.Time `json:"changed_at"`
}

type GetOrderStatusHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderStatusHistoryQueryHandler(db *gorm.DB) GetOrderStatusHistoryQueryHandler {
	return GetOrderStatusHistoryQueryHandler{db: db}
}

// Handle returns the history oldest first.
func (h GetOrderStatusHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusHistoryQuery,
) ([]StatusHistoryEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if _, err := loadSummary(ctx, h.db, query.orderID, query.userUUID); err != nil {
		return nil, err
	}

	entries := make([]StatusHistoryEntry, 0)
	err := h.db.WithContext(ctx).Raw(`
		SELECT status, changed_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY changed_at, id
	`, query.orderID).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].StatusHuman = entries[i].Status
		if status, parseErr := order.ParseStatus(entries[i].Status); parseErr == nil {
			entries[i].StatusHuman = status.Human()
		}
	}
	return entries, nil
}
