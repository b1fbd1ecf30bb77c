package kernel

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// VehicleType is the pricing category of a vehicle.
type VehicleType string

const (
	VehicleTypeCar  VehicleType = "CAR"
	VehicleTypeMoto VehicleType = "MOTO"
)

// VehicleTypeFromLot maps the auction's vehicle category to a pricing category.
func VehicleTypeFromLot(lotVehicleType string) VehicleType {
	if lotVehicleType == "Motorcycle" {
		return VehicleTypeMoto
	}
	return VehicleTypeCar
}

func (v VehicleType) Validate() error {
	if v != VehicleTypeCar && v != VehicleTypeMoto {
		return errs.NewValueIsInvalidErrorWithCause("vehicle type", fmt.Errorf("%q is not a known vehicle type", string(v)))
	}
	return nil
}

func (v VehicleType) String() string {
	return string(v)
}
