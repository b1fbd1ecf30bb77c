// Package orderrepo maps the order aggregate onto the orders, invoice_items
// and order_status_history tables.
package orderrepo

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderDTO is a row of the orders table.
type OrderDTO struct {
	ID                 int64 `gorm:"primaryKey"`
	LotID              int64
	VIN                string `gorm:"column:vin"`
	Auction            string
	VehicleName        string
	VehicleType        string
	VehicleValue       int64
	Keys               bool
	Damage             bool
	Color              string
	LocationID         int64
	LocationName       string
	LocationCity       string
	LocationState      string
	LocationPostalCode string
	TerminalID         int64
	TerminalName       string
	FeeTypeID          int64
	FeeTypeName        string
	DestinationID      int64
	DestinationName    string
	OwnerUUID          string `gorm:"column:owner_uuid"`
	OwnerName          string
	OwnerEmail         string
	AutoGenerated      bool
	TrackingLink       string
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Items []InvoiceItemDTO `gorm:"foreignKey:OrderID"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// InvoiceItemDTO is a row of the invoice_items table.
type InvoiceItemDTO struct {
	ID         int64 `gorm:"primaryKey"`
	OrderID    int64
	Name       string
	Amount     int64
	IsExtraFee bool
	CreatedAt  time.Time
}

func (InvoiceItemDTO) TableName() string {
	return "invoice_items"
}

// StatusHistoryDTO is a row of the append-only order_status_history table.
type StatusHistoryDTO struct {
	ID        int64 `gorm:"primaryKey"`
	OrderID   int64
	Status    string
	ChangedAt time.Time
}

func (StatusHistoryDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(o *order.Order) OrderDTO {
	v, p, owner := o.Vehicle(), o.Pricing(), o.Owner()
	return OrderDTO{
		ID:                 o.ID(),
		LotID:              v.LotID,
		VIN:                v.VIN,
		Auction:            v.Auction.String(),
		VehicleName:        v.Name,
		VehicleType:        string(v.Type),
		VehicleValue:       v.Value,
		Keys:               v.Keys,
		Damage:             v.Damage,
		Color:              v.Color,
		LocationID:         p.Location.ID,
		LocationName:       p.Location.Name,
		LocationCity:       p.Location.City,
		LocationState:      p.Location.State,
		LocationPostalCode: p.Location.PostalCode,
		TerminalID:         p.TerminalID,
		TerminalName:       p.TerminalName,
		FeeTypeID:          p.FeeTypeID,
		FeeTypeName:        p.FeeTypeName,
		DestinationID:      p.DestinationID,
		DestinationName:    p.DestinationName,
		OwnerUUID:          owner.UUID,
		OwnerName:          owner.Name,
		OwnerEmail:         owner.Email,
		AutoGenerated:      o.AutoGenerated(),
		TrackingLink:       o.TrackingLink(),
		Status:             o.Status().String(),
		CreatedAt:          o.CreatedAt(),
		UpdatedAt:          o.UpdatedAt(),
	}
}

func itemFromDomain(orderID int64, item *order.InvoiceItem) InvoiceItemDTO {
	return InvoiceItemDTO{
		ID:         item.ID(),
		OrderID:    orderID,
		Name:       item.Name(),
		Amount:     item.Amount(),
		IsExtraFee: item.IsExtraFee(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	items := make([]*order.InvoiceItem, 0, len(dto.Items))
	for _, row := range dto.Items {
		item, itemErr := order.RestoreInvoiceItem(row.ID, row.Name, row.Amount, row.IsExtraFee)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.Snapshot{
		ID: dto.ID,
		Vehicle: order.Vehicle{
			LotID:   dto.LotID,
			VIN:     dto.VIN,
			Auction: kernel.Auction(dto.Auction),
			Name:    dto.VehicleName,
			Type:    kernel.VehicleType(dto.VehicleType),
			Value:   dto.VehicleValue,
			Keys:    dto.Keys,
			Damage:  dto.Damage,
			Color:   dto.Color,
		},
		Pricing: order.Pricing{
			Location: order.Location{
				ID:         dto.LocationID,
				Name:       dto.LocationName,
				City:       dto.LocationCity,
				State:      dto.LocationState,
				PostalCode: dto.LocationPostalCode,
			},
			TerminalID:      dto.TerminalID,
			TerminalName:    dto.TerminalName,
			FeeTypeID:       dto.FeeTypeID,
			FeeTypeName:     dto.FeeTypeName,
			DestinationID:   dto.DestinationID,
			DestinationName: dto.DestinationName,
		},
		Owner: order.Owner{
			UUID:  dto.OwnerUUID,
			Name:  dto.OwnerName,
			Email: dto.OwnerEmail,
		},
		AutoGenerated: dto.AutoGenerated,
		TrackingLink:  dto.TrackingLink,
		Status:        status,
		Items:         items,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
	})
}
