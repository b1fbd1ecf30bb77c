package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrderFromLotCommandHandler creates an order for a won bid. Pricing
// uses the first terminal and destination offered by the calculator; the
// terminal is replaced by the cheapest route when one of that name exists.
type CreateOrderFromLotCommandHandler struct {
	uowFactory OrderUoWFactory
	lots       ports.LotClient
	identity   ports.IdentityClient
	calculator ports.CalculatorClient
	routes     services.RouteSelector
	invoices   services.InvoiceBuilder
}

func NewCreateOrderFromLotCommandHandler(
	uowFactory OrderUoWFactory,
	lots ports.LotClient,
	identity ports.IdentityClient,
	calculator ports.CalculatorClient,
) CreateOrderFromLotCommandHandler {
	return CreateOrderFromLotCommandHandler{
		uowFactory: uowFactory,
		lots:       lots,
		identity:   identity,
		calculator: calculator,
		routes:     services.NewRouteSelector(),
		invoices:   services.NewInvoiceBuilder(),
	}
}

// Handle returns errs.KindConflict when an order for the lot already exists.
func (h *CreateOrderFromLotCommandHandler) Handle(ctx context.Context, cmd CreateOrderFromLotCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	repo := uow.OrderRepository()

	exists, err := repo.ExistsByLotID(ctx, cmd.LotID())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Conflict(fmt.Sprintf("order with lot id %d already exists", cmd.LotID()))
	}

	lot, err := h.lots.GetLot(ctx, strconv.FormatInt(cmd.LotID(), 10), cmd.Auction())
	if err != nil {
		return nil, err
	}

	vehicle := order.Vehicle{
		LotID:   cmd.LotID(),
		VIN:     lot.VIN,
		Auction: cmd.Auction(),
		Name:    lot.Title,
		Type:    kernel.VehicleTypeFromLot(lot.VehicleType),
		Value:   lot.Price(cmd.BidAmount()),
		Keys:    strings.EqualFold(strings.TrimSpace(lot.Keys), "yes"),
		Damage:  lot.PrimaryDamage != "" || lot.SecondaryDamage != "",
		Color:   lot.Color,
	}

	quote, err := h.calculator.GetCalculatorWithData(ctx, ports.CalculatorByNames{
		Price:       vehicle.Value,
		Auction:     vehicle.Auction,
		VehicleType: vehicle.Type,
		Location:    lot.Location,
	})
	if err != nil {
		return nil, lookupFailure(err, "calculator request failed")
	}
	detailed, breakdown, err := completeQuote(quote)
	if err != nil {
		return nil, err
	}
	if len(detailed.Terminals) == 0 {
		return nil, errs.BadRequest("calculator response missing terminals")
	}
	if len(detailed.Destinations) == 0 {
		return nil, errs.BadRequest("calculator response missing destinations")
	}

	terminal := detailed.Terminals[0]
	destination := detailed.Destinations[0]
	var route *services.Route
	if cheapest, ok := h.routes.Cheapest(*breakdown); ok {
		route = &cheapest
		terminal.Name = cheapest.Name
		if named, ok := detailed.TerminalByName(cheapest.Name); ok {
			terminal.ID = named.ID
		}
	}

	locationID := detailed.LocationID
	if locationID == 0 {
		locationID = lot.LocationID
	}
	location := order.Location(detailed.Location)
	location.ID = locationID

	exists, err = repo.ExistsByVIN(ctx, vehicle.VIN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Conflict(fmt.Sprintf("order with vin %s already exists", vehicle.VIN))
	}

	owner, err := resolveOwner(ctx, h.identity, cmd.UserUUID())
	if err != nil {
		return nil, err
	}

	aggregate, err := order.NewOrder(vehicle, order.Pricing{
		Location:        location,
		TerminalID:      terminal.ID,
		TerminalName:    terminal.Name,
		FeeTypeID:       detailed.FeeTypeID,
		FeeTypeName:     detailed.FeeType,
		DestinationID:   destination.ID,
		DestinationName: destination.Name,
	}, owner, true, now())
	if err != nil {
		return nil, err
	}

	items, err := h.invoices.Build(aggregate.Vehicle(), *breakdown, route)
	if err != nil {
		return nil, err
	}
	if err = aggregate.AddInvoiceItems(items...); err != nil {
		return nil, err
	}

	if err = addOrder(ctx, uow, aggregate); err != nil {
		return nil, err
	}

	return aggregate, nil
}
