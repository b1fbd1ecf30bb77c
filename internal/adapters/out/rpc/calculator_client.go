package rpc

import (
	"context"

	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"

	"github.com/shopspring/decimal"
)

const (
	methodCalculatorWithData = "/calculator.v1.CalculatorService/GetCalculatorWithData"
	methodCalculatorWithIDs  = "/calculator.v1.CalculatorService/GetCalculatorWithIds"
)

type calculatorWithDataRequest struct {
	Price       int64  `json:"price"`
	Auction     string `json:"auction"`
	VehicleType string `json:"vehicle_type"`
	Location    string `json:"location"`
	FeeType     string `json:"fee_type,omitempty"`
	Destination string `json:"destination,omitempty"`
}

type calculatorWithIDsRequest struct {
	Price         int64  `json:"price"`
	Auction       string `json:"auction"`
	VehicleType   string `json:"vehicle_type"`
	LocationID    int64  `json:"location_id"`
	FeeTypeID     int64  `json:"fee_type_id,omitempty"`
	DestinationID int64  `json:"destination_id,omitempty"`
}

type pricedNameWire struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type defaultCalculatorWire struct {
	BrokerFee  decimal.Decimal `json:"broker_fee"`
	Additional struct {
		Fees []pricedNameWire `json:"fees"`
	} `json:"additional"`
	TransportationPrice []pricedNameWire `json:"transportation_price"`
	OceanShip           []pricedNameWire `json:"ocean_ship"`
}

type terminalWire struct {
	ID   int64  `json:"terminal_id"`
	Name string `json:"terminal_name"`
}

type destinationWire struct {
	ID   int64  `json:"destination_id"`
	Name string `json:"destination_name"`
}

type locationWire struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

type feeTypeWire struct {
	ID      int64  `json:"id"`
	FeeType string `json:"fee_type"`
}

type detailedDataWire struct {
	LocationID            int64             `json:"location_id"`
	FeeTypeID             int64             `json:"fee_type_id"`
	LocationData          *locationWire     `json:"location_data"`
	FeeTypeData           *feeTypeWire      `json:"fee_type_data"`
	Terminals             []terminalWire    `json:"terminals"`
	AvailableDestinations []destinationWire `json:"available_destinations"`
}

type calculatorResponse struct {
	DetailedData *detailedDataWire `json:"detailed_data"`
	Data         *struct {
		Calculator *defaultCalculatorWire `json:"calculator"`
	} `json:"data"`
}

// CalculatorClient prices vehicles through the calculator service.
type CalculatorClient struct {
	caller Caller
}

var _ ports.CalculatorClient = (*CalculatorClient)(nil)

func NewCalculatorClient(caller Caller) *CalculatorClient {
	return &CalculatorClient{caller: caller}
}

func (c *CalculatorClient) GetCalculatorWithData(ctx context.Context, req ports.CalculatorByNames) (pricing.Quote, error) {
	var resp calculatorResponse
	err := c.caller.Call(ctx, methodCalculatorWithData, calculatorWithDataRequest{
		Price:       req.Price,
		Auction:     req.Auction.String(),
		VehicleType: req.VehicleType.String(),
		Location:    req.Location,
		FeeType:     req.FeeType,
		Destination: req.Destination,
	}, &resp)
	if err != nil {
		return pricing.Quote{}, err
	}
	return resp.toQuote(), nil
}

func (c *CalculatorClient) GetCalculatorWithIDs(ctx context.Context, req ports.CalculatorByIDs) (pricing.Quote, error) {
	var resp calculatorResponse
	err := c.caller.Call(ctx, methodCalculatorWithIDs, calculatorWithIDsRequest{
		Price:         req.Price,
		Auction:       req.Auction.String(),
		VehicleType:   req.VehicleType.String(),
		LocationID:    req.LocationID,
		FeeTypeID:     req.FeeTypeID,
		DestinationID: req.DestinationID,
	}, &resp)
	if err != nil {
		return pricing.Quote{}, err
	}
	return resp.toQuote(), nil
}

func (r calculatorResponse) toQuote() pricing.Quote {
	var quote pricing.Quote

	if d := r.DetailedData; d != nil {
		detailed := &pricing.DetailedData{
			LocationID: d.LocationID,
			FeeTypeID:  d.FeeTypeID,
		}
		if d.LocationData != nil {
			detailed.Location = d.LocationData.toDomain()
		}
		if d.FeeTypeData != nil {
			detailed.FeeType = d.FeeTypeData.FeeType
		}
		for _, t := range d.Terminals {
			detailed.Terminals = append(detailed.Terminals, pricing.Terminal{ID: t.ID, Name: t.Name})
		}
		for _, dst := range d.AvailableDestinations {
			detailed.Destinations = append(detailed.Destinations, pricing.Destination{ID: dst.ID, Name: dst.Name})
		}
		quote.Detailed = detailed
	}

	if r.Data != nil && r.Data.Calculator != nil {
		calc := r.Data.Calculator
		quote.Breakdown = &pricing.Breakdown{
			BrokerFee:      wholeUnits(calc.BrokerFee),
			AdditionalFees: pricedNames(calc.Additional.Fees),
			Transportation: pricedNames(calc.TransportationPrice),
			OceanShipping:  pricedNames(calc.OceanShip),
		}
	}

	return quote
}

func (l locationWire) toDomain() pricing.Location {
	return pricing.Location{
		ID:         l.ID,
		Name:       l.Name,
		City:       l.City,
		State:      l.State,
		PostalCode: l.PostalCode,
	}
}

func pricedNames(in []pricedNameWire) []pricing.PricedName {
	if len(in) == 0 {
		return nil
	}
	out := make([]pricing.PricedName, 0, len(in))
	for _, p := range in {
		out = append(out, pricing.PricedName{Name: p.Name, Price: wholeUnits(p.Price)})
	}
	return out
}

// wholeUnits rounds half away from zero.
func wholeUnits(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
