package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

const defaultColor = "Unknown"

// Vehicle describes the purchased lot.
type Vehicle struct {
	LotID   int64
	VIN     string
	Auction kernel.Auction
	Name    string
	Type    kernel.VehicleType
	// Value is the price the customer pays for the vehicle.
	Value   int64
	Keys    bool
	Damage  bool
	Color   string
}

func (v Vehicle) validate() error {
	var problems []error
	if v.LotID <= 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("lot id", fmt.Errorf("%d is not positive", v.LotID)))
	}
	if strings.TrimSpace(v.VIN) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("vin"))
	}
	if strings.TrimSpace(v.Name) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("vehicle name"))
	}
	if v.Value < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("vehicle value", fmt.Errorf("%d is negative", v.Value)))
	}
	problems = append(problems, v.Auction.Validate(), v.Type.Validate())
	return errors.Join(problems...)
}

func (v Vehicle) normalized() Vehicle {
	v.VIN = strings.TrimSpace(v.VIN)
	if strings.TrimSpace(v.Color) == "" {
		v.Color = defaultColor
	}
	return v
}

// Location is the pickup location snapshot taken from the calculator.
type Location struct {
	ID         int64
	Name       string
	City       string
	State      string
	PostalCode string
}

// Pricing is the snapshot of calculator selections the order was priced with.
// DestinationID is zero while no destination has been chosen.
type Pricing struct {
	Location        Location
	TerminalID      int64
	TerminalName    string
	FeeTypeID       int64
	FeeTypeName     string
	DestinationID   int64
	DestinationName string
}

// Owner identifies the customer an order belongs to.
type Owner struct {
	UUID  string
	Name  string
	Email string
}
