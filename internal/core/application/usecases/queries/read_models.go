// Package queries contains the read side: order views built with direct SQL
// over the same tables the repositories write.
package queries

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"gorm.io/gorm"
)

// OrderSummary is an order without its invoice.
type OrderSummary struct {
	ID                 int64     `json:"id"`
	LotID              int64     `json:"lot_id"`
	VIN                string    `json:"vin" gorm:"column:vin"`
	Auction            string    `json:"auction"`
	VehicleName        string    `json:"vehicle_name"`
	VehicleType        string    `json:"vehicle_type"`
	VehicleValue       int64     `json:"vehicle_value"`
	Keys               bool      `json:"keys"`
	Damage             bool      `json:"damage"`
	Color              string    `json:"color"`
	LocationID         int64     `json:"location_id"`
	LocationName       string    `json:"location_name"`
	LocationCity       string    `json:"location_city"`
	LocationState      string    `json:"location_state"`
	LocationPostalCode string    `json:"location_postal_code"`
	TerminalID         int64     `json:"terminal_id"`
	TerminalName       string    `json:"terminal_name"`
	FeeTypeID          int64     `json:"fee_type_id"`
	FeeTypeName        string    `json:"fee_type_name"`
	DestinationID      int64     `json:"destination_id"`
	DestinationName    string    `json:"destination_name"`
	OwnerUUID          string    `json:"user_uuid" gorm:"column:owner_uuid"`
	OwnerName          string    `json:"user_name"`
	OwnerEmail         string    `json:"user_email"`
	AutoGenerated      bool      `json:"auto_generated"`
	TrackingLink       string    `json:"tracking_link"`
	Status             string    `json:"delivery_status"`
	StatusHuman        string    `json:"delivery_status_human" gorm:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type InvoiceItemView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
	IsExtraFee bool   `json:"is_extra_fee"`
}

// OrderView is an order with its invoice and the invoice total.
type OrderView struct {
	OrderSummary
	Items        []InvoiceItemView `json:"invoice_items"`
	InvoiceTotal int64             `json:"invoice_total"`
}

const orderColumns = `id, lot_id, vin, auction, vehicle_name, vehicle_type, vehicle_value, keys, damage, color,
	location_id, location_name, location_city, location_state, location_postal_code,
	terminal_id, terminal_name, fee_type_id, fee_type_name, destination_id, destination_name,
	owner_uuid, owner_name, owner_email, auto_generated, tracking_link, status, created_at, updated_at`

func (s *OrderSummary) humanize() {
	status, err := order.ParseStatus(s.Status)
	if err != nil {
		s.StatusHuman = s.Status
		return
	}
	s.StatusHuman = status.Human()
}

// loadSummary reads one order and applies the owner check when userUUID is set.
func loadSummary(ctx context.Context, db *gorm.DB, orderID int64, userUUID string) (OrderSummary, error) {
	var summary OrderSummary
	result := db.WithContext(ctx).
		Raw("SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID).
		Scan(&summary)
	if result.Error != nil {
		return OrderSummary{}, result.Error
	}
	if result.RowsAffected == 0 {
		return OrderSummary{}, errs.Wrap(errs.KindNotFound, errs.NewObjectNotFoundError("order", orderID),
			fmt.Sprintf("order %d not found", orderID))
	}
	if userUUID != "" && summary.OwnerUUID != userUUID {
		return OrderSummary{}, errs.New(errs.KindForbidden, "not allowed")
	}

	summary.humanize()
	return summary, nil
}
