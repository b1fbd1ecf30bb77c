package queries

import (
	"context"
	"errors"
	"strings"

	"orderflow/internal/pkg/guard"

	"gorm.io/gorm"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery pages through orders, newest first. Search matches the VIN
// or vehicle name (case-insensitive substring) or the exact lot id.
type ListOrdersQuery struct {
	search    string
	ownerUUID string
	limit     int
	offset    int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery clamps limit to [1, MaxListLimit] (0 means
// DefaultListLimit) and negative offsets to 0.
func NewListOrdersQuery(search, ownerUUID string, limit, offset int) ListOrdersQuery {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return ListOrdersQuery{
		search:    strings.TrimSpace(search),
		ownerUUID: strings.TrimSpace(ownerUUID),
		limit:     limit,
		offset:    offset,
		guard:     guard.NewConstructorGuard(),
	}
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Limit() int { return q.limit }

func (q ListOrdersQuery) Offset() int { return q.offset }

type ListOrdersResponse struct {
	Orders []OrderSummary `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type ListOrdersQueryHandler struct {
	db *gorm.DB
}

func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (ListOrdersResponse, error) {
	if err := query.Validate(); err != nil {
		return ListOrdersResponse{}, err
	}

	filtered := func() *gorm.DB {
		db := h.db.WithContext(ctx).Table("orders")
		if query.ownerUUID != "" {
			db = db.Where("owner_uuid = ?", query.ownerUUID)
		}
		if query.search != "" {
			pattern := "%" + query.search + "%"
			db = db.Where("vin ILIKE ? OR vehicle_name ILIKE ? OR CAST(lot_id AS TEXT) = ?",
				pattern, pattern, query.search)
		}
		return db
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return ListOrdersResponse{}, err
	}

	orders := make([]OrderSummary, 0)
	err := filtered().
		Select(orderColumns).
		Order("created_at DESC, id DESC").
		Limit(query.limit).
		Offset(query.offset).
		Scan(&orders).Error
	if err != nil {
		return ListOrdersResponse{}, err
	}

	for i := range orders {
		orders[i].humanize()
	}

	return ListOrdersResponse{Orders: orders, Total: total, Limit: query.limit, Offset: query.offset}, nil
}
