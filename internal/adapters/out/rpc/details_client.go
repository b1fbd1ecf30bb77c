package rpc

import (
	"context"

	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"
)

const (
	methodDetailedLocation    = "/auction.v1.DetailedInfoService/GetDetailedLocation"
	methodDetailedTerminal    = "/auction.v1.DetailedInfoService/GetDetailedTerminal"
	methodDetailedDestination = "/auction.v1.DetailedInfoService/GetDetailedDestination"
	methodDetailedFeeType     = "/auction.v1.DetailedInfoService/GetDetailedFeeType"
)

type byIDRequest struct {
	ID int64 `json:"id"`
}

type namedWire struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// DetailsClient resolves calculator reference data by id.
type DetailsClient struct {
	caller Caller
}

var _ ports.DetailsClient = (*DetailsClient)(nil)

func NewDetailsClient(caller Caller) *DetailsClient {
	return &DetailsClient{caller: caller}
}

func (c *DetailsClient) GetLocation(ctx context.Context, id int64) (pricing.Location, error) {
	var resp locationWire
	if err := c.caller.Call(ctx, methodDetailedLocation, byIDRequest{ID: id}, &resp); err != nil {
		return pricing.Location{}, err
	}
	return resp.toDomain(), nil
}

func (c *DetailsClient) GetTerminal(ctx context.Context, id int64) (pricing.Terminal, error) {
	var resp namedWire
	if err := c.caller.Call(ctx, methodDetailedTerminal, byIDRequest{ID: id}, &resp); err != nil {
		return pricing.Terminal{}, err
	}
	return pricing.Terminal{ID: resp.ID, Name: resp.Name}, nil
}

func (c *DetailsClient) GetDestination(ctx context.Context, id int64) (pricing.Destination, error) {
	var resp namedWire
	if err := c.caller.Call(ctx, methodDetailedDestination, byIDRequest{ID: id}, &resp); err != nil {
		return pricing.Destination{}, err
	}
	return pricing.Destination{ID: resp.ID, Name: resp.Name}, nil
}

func (c *DetailsClient) GetFeeType(ctx context.Context, id int64) (pricing.FeeType, error) {
	var resp feeTypeWire
	if err := c.caller.Call(ctx, methodDetailedFeeType, byIDRequest{ID: id}, &resp); err != nil {
		return pricing.FeeType{}, err
	}
	return pricing.FeeType{ID: resp.ID, Name: resp.FeeType}, nil
}
