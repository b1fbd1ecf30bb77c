package queries

import (
	"context"
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its invoice. An empty userUUID skips
// the owner check (administrative access).
type GetOrderQuery struct {
	orderID  int64
	userUUID string

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID int64, userUUID string) (GetOrderQuery, error) {
	if orderID <= 0 {
		return GetOrderQuery{}, errs.NewValueIsRequiredError("order id")
	}
	return GetOrderQuery{orderID: orderID, userUUID: userUUID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	summary, err := loadSummary(ctx, h.db, query.orderID, query.userUUID)
	if err != nil {
		return OrderView{}, err
	}

	items := make([]InvoiceItemView, 0)
	err = h.db.WithContext(ctx).Raw(`
		SELECT id, name, amount, is_extra_fee
		FROM invoice_items
		WHERE order_id = ?
		ORDER BY id
	`, query.orderID).Scan(&items).Error
	if err != nil {
		return OrderView{}, err
	}

	view := OrderView{OrderSummary: summary, Items: items}
	for _, item := range items {
		view.InvoiceTotal += item.Amount
	}
	return view, nil
}
