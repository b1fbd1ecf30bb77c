package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

func now() time.Time {
	return time.Now().UTC()
}

func required(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}

func positive(name string, value int64) error {
	if value <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%d is not positive", value))
	}
	return nil
}

// lookupFailure classifies a failed remote lookup made while building an
// order: NotFound stays NotFound, anything else is a BadRequest. The cause is
// kept so a transport failure remains retryable for the event consumer.
func lookupFailure(err error, message string) error {
	if errs.IsKind(err, errs.KindNotFound) {
		return errs.Wrap(errs.KindNotFound, err, message)
	}
	return errs.Wrap(errs.KindBadRequest, err, message)
}

func orderNotFound(id int64, err error) error {
	if errs.IsKind(err, errs.KindNotFound) {
		return errs.Wrap(errs.KindNotFound, err, fmt.Sprintf("order %d not found", id))
	}
	return err
}

// checkOwner is skipped when the caller is not known.
func checkOwner(aggregate *order.Order, userUUID string) error {
	if userUUID == "" || aggregate.IsOwnedBy(userUUID) {
		return nil
	}
	return errs.New(errs.KindForbidden, "not allowed")
}

// availablePricing prices an existing order by its stored reference data ids.
func availablePricing(ctx context.Context, calculator ports.CalculatorClient, aggregate *order.Order) (pricing.Quote, error) {
	vehicle := aggregate.Vehicle()
	p := aggregate.Pricing()
	quote, err := calculator.GetCalculatorWithIDs(ctx, ports.CalculatorByIDs{
		Price:       vehicle.Value,
		Auction:     vehicle.Auction,
		VehicleType: vehicle.Type,
		LocationID:  p.Location.ID,
		FeeTypeID:   p.FeeTypeID,
	})
	if err != nil {
		return pricing.Quote{}, lookupFailure(err, "calculator request failed")
	}
	return quote, nil
}
