package http

import (
	"time"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
)

type invoiceItemResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Amount     int64  `json:"amount"`
	IsExtraFee bool   `json:"is_extra_fee"`
}

func newInvoiceItemResponse(item *order.InvoiceItem) invoiceItemResponse {
	return invoiceItemResponse{
		ID:         item.ID(),
		Name:       item.Name(),
		Amount:     item.Amount(),
		IsExtraFee: item.IsExtraFee(),
	}
}

// orderResponse mirrors queries.OrderView so reads and writes return the
// same shape.
type orderResponse struct {
	ID                  int64                 `json:"id"`
	LotID               int64                 `json:"lot_id"`
	VIN                 string                `json:"vin"`
	Auction             string                `json:"auction"`
	VehicleName         string                `json:"vehicle_name"`
	VehicleType         string                `json:"vehicle_type"`
	VehicleValue        int64                 `json:"vehicle_value"`
	Keys                bool                  `json:"keys"`
	Damage              bool                  `json:"damage"`
	Color               string                `json:"color"`
	LocationID          int64                 `json:"location_id"`
	LocationName        string                `json:"location_name"`
	LocationCity        string                `json:"location_city"`
	LocationState       string                `json:"location_state"`
	LocationPostalCode  string                `json:"location_postal_code"`
	TerminalID          int64                 `json:"terminal_id"`
	TerminalName        string                `json:"terminal_name"`
	FeeTypeID           int64                 `json:"fee_type_id"`
	FeeTypeName         string                `json:"fee_type_name"`
	DestinationID       int64                 `json:"destination_id"`
	DestinationName     string                `json:"destination_name"`
	UserUUID            string                `json:"user_uuid"`
	UserName            string                `json:"user_name"`
	UserEmail           string                `json:"user_email"`
	AutoGenerated       bool                  `json:"auto_generated"`
	TrackingLink        string                `json:"tracking_link"`
	DeliveryStatus      string                `json:"delivery_status"`
	DeliveryStatusHuman string                `json:"delivery_status_human"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
	Items               []invoiceItemResponse `json:"invoice_items"`
	InvoiceTotal        int64                 `json:"invoice_total"`
}

func newOrderResponse(o *order.Order) orderResponse {
	vehicle, pricing, owner := o.Vehicle(), o.Pricing(), o.Owner()

	resp := orderResponse{
		ID:                  o.ID(),
		LotID:               vehicle.LotID,
		VIN:                 vehicle.VIN,
		Auction:             vehicle.Auction.String(),
		VehicleName:         vehicle.Name,
		VehicleType:         vehicle.Type.String(),
		VehicleValue:        vehicle.Value,
		Keys:                vehicle.Keys,
		Damage:              vehicle.Damage,
		Color:               vehicle.Color,
		LocationID:          pricing.Location.ID,
		LocationName:        pricing.Location.Name,
		LocationCity:        pricing.Location.City,
		LocationState:       pricing.Location.State,
		LocationPostalCode:  pricing.Location.PostalCode,
		TerminalID:          pricing.TerminalID,
		TerminalName:        pricing.TerminalName,
		FeeTypeID:           pricing.FeeTypeID,
		FeeTypeName:         pricing.FeeTypeName,
		DestinationID:       pricing.DestinationID,
		DestinationName:     pricing.DestinationName,
		UserUUID:            owner.UUID,
		UserName:            owner.Name,
		UserEmail:           owner.Email,
		AutoGenerated:       o.AutoGenerated(),
		TrackingLink:        o.TrackingLink(),
		DeliveryStatus:      o.Status().String(),
		DeliveryStatusHuman: o.Status().Human(),
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
		Items:               make([]invoiceItemResponse, 0, len(o.Items())),
	}
	for _, item := range o.Items() {
		resp.Items = append(resp.Items, newInvoiceItemResponse(item))
		resp.InvoiceTotal += item.Amount()
	}
	return resp
}

type customInvoiceResponse struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	FileID    int64     `json:"file_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCustomInvoiceResponse(ci *custominvoice.CustomInvoice) customInvoiceResponse {
	return customInvoiceResponse{
		ID:        ci.ID(),
		OrderID:   ci.OrderID(),
		FileID:    ci.FileID(),
		Status:    string(ci.Status()),
		CreatedAt: ci.CreatedAt(),
		UpdatedAt: ci.UpdatedAt(),
	}
}

type uploadResponse struct {
	FileID     int64             `json:"file_id"`
	Bucket     string            `json:"bucket"`
	Key        string            `json:"key"`
	UploadURL  string            `json:"upload_url"`
	ExpiresIn  int64             `json:"expires_in"`
	HTTPMethod string            `json:"http_method"`
	Headers    map[string]string `json:"headers,omitempty"`
}

func newUploadResponse(u ports.PresignedUpload) uploadResponse {
	return uploadResponse{
		FileID:     u.FileID,
		Bucket:     u.Bucket,
		Key:        u.Key,
		UploadURL:  u.UploadURL,
		ExpiresIn:  u.ExpiresIn,
		HTTPMethod: u.HTTPMethod,
		Headers:    u.Headers,
	}
}

type downloadResponse struct {
	FileID      int64  `json:"file_id"`
	DownloadURL string `json:"download_url"`
	ExpiresIn   int64  `json:"expires_in"`
}

func newDownloadResponse(d ports.Download) downloadResponse {
	return downloadResponse{FileID: d.FileID, DownloadURL: d.DownloadURL, ExpiresIn: d.ExpiresIn}
}
