package queries

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetAvailableDestinationsQueryIsNotConstructed = errors.New(
	"GetAvailableDestinationsQuery must be created via NewGetAvailableDestinationsQuery constructor",
)

// GetAvailableDestinationsQuery asks the calculator which destinations the
// order can still be shipped to.
type GetAvailableDestinationsQuery struct {
	orderID  int64
	userUUID string

	guard guard.ConstructorGuard
}

func NewGetAvailableDestinationsQuery(orderID int64, userUUID string) (GetAvailableDestinationsQuery, error) {
	if orderID <= 0 {
		return GetAvailableDestinationsQuery{}, errs.NewValueIsRequiredError("order id")
	}
	return GetAvailableDestinationsQuery{orderID: orderID, userUUID: userUUID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetAvailableDestinationsQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableDestinationsQueryIsNotConstructed)
}

type DestinationView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type GetAvailableDestinationsQueryHandler struct {
	db         *gorm.DB
	calculator ports.CalculatorClient
}

func NewGetAvailableDestinationsQueryHandler(db *gorm.DB, calculator ports.CalculatorClient) GetAvailableDestinationsQueryHandler {
	return GetAvailableDestinationsQueryHandler{db: db, calculator: calculator}
}

func (h GetAvailableDestinationsQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableDestinationsQuery,
) ([]DestinationView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	summary, err := loadSummary(ctx, h.db, query.orderID, query.userUUID)
	if err != nil {
		return nil, err
	}

	quote, err := h.calculator.GetCalculatorWithIDs(ctx, ports.CalculatorByIDs{
		Price:       summary.VehicleValue,
		Auction:     kernel.Auction(summary.Auction),
		VehicleType: kernel.VehicleType(summary.VehicleType),
		LocationID:  summary.LocationID,
		FeeTypeID:   summary.FeeTypeID,
	})
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errs.Wrap(errs.KindNotFound, err, "calculator reference data not found")
		}
		return nil, errs.Wrap(errs.KindBadRequest, err, "calculator request failed")
	}
	if quote.Detailed == nil {
		return nil, errs.BadRequest("calculator response missing detailed data")
	}

	views := make([]DestinationView, 0, len(quote.Detailed.Destinations))
	for _, d := range quote.Detailed.Destinations {
		views = append(views, DestinationView{ID: d.ID, Name: d.Name, Selected: d.ID == summary.DestinationID})
	}
	return views, nil
}
