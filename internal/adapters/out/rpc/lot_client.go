package rpc

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const methodGetLot = "/auction.v1.LotService/GetLotByVinOrLot"

type getLotRequest struct {
	VINOrLotID string `json:"vin_or_lot_id"`
	Site       string `json:"site"`
}

type lotWire struct {
	LotID         int64           `json:"lot_id"`
	VIN           string          `json:"vin"`
	Title         string          `json:"title"`
	BaseSite      string          `json:"base_site"`
	VehicleType   string          `json:"vehicle_type"`
	Location      string          `json:"location"`
	LocationID    int64           `json:"location_id"`
	Keys          string          `json:"keys"`
	DamagePr      string          `json:"damage_pr"`
	DamageSec     string          `json:"damage_sec"`
	Color         string          `json:"color"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentBid    decimal.Decimal `json:"current_bid"`
	PriceFuture   decimal.Decimal `json:"price_future"`
	PriceNew      decimal.Decimal `json:"price_new"`
}

// getLotResponse carries one lot; the auction service wraps it in a list.
type getLotResponse struct {
	Lot []lotWire `json:"lot"`
}

type LotClient struct {
	caller Caller
}

var _ ports.LotClient = (*LotClient)(nil)

func NewLotClient(caller Caller) *LotClient {
	return &LotClient{caller: caller}
}

func (c *LotClient) GetLot(ctx context.Context, lotIDOrVIN string, site kernel.Auction) (ports.Lot, error) {
	var resp getLotResponse
	err := c.caller.Call(ctx, methodGetLot, getLotRequest{VINOrLotID: lotIDOrVIN, Site: site.String()}, &resp)
	if err != nil {
		return ports.Lot{}, err
	}
	if len(resp.Lot) == 0 {
		return ports.Lot{}, errLotNotFound(lotIDOrVIN)
	}

	l := resp.Lot[0]
	return ports.Lot{
		LotID:           l.LotID,
		VIN:             l.VIN,
		Title:           l.Title,
		BaseSite:        l.BaseSite,
		VehicleType:     l.VehicleType,
		Location:        l.Location,
		LocationID:      l.LocationID,
		Keys:            l.Keys,
		PrimaryDamage:   l.DamagePr,
		SecondaryDamage: l.DamageSec,
		Color:           l.Color,
		PurchasePrice:   wholeUnits(l.PurchasePrice),
		CurrentBid:      wholeUnits(l.CurrentBid),
		PriceFuture:     wholeUnits(l.PriceFuture),
		PriceNew:        wholeUnits(l.PriceNew),
	}, nil
}

func errLotNotFound(lotIDOrVIN string) error {
	return errs.NotFound(fmt.Sprintf("lot %s not found", lotIDOrVIN))
}
