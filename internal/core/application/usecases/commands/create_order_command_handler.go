package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// CreateOrderCommandHandler creates an order from an explicit pricing
// selection: it checks the lot is new, resolves the owner and the reference
// data, prices the vehicle, builds the invoice and stores everything at once.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	identity   ports.IdentityClient
	details    ports.DetailsClient
	calculator ports.CalculatorClient
	routes     services.RouteSelector
	invoices   services.InvoiceBuilder
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	identity ports.IdentityClient,
	details ports.DetailsClient,
	calculator ports.CalculatorClient,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		identity:   identity,
		details:    details,
		calculator: calculator,
		routes:     services.NewRouteSelector(),
		invoices:   services.NewInvoiceBuilder(),
	}
}

// Handle returns the stored order. A lot or VIN that already exists, either
// before the remote lookups or at commit time, is errs.KindConflict.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	vehicle := cmd.Vehicle()
	selection := cmd.Selection()

	uow := h.uowFactory.Create()
	if err := ensureNewLot(ctx, uow.OrderRepository(), vehicle.LotID, vehicle.VIN); err != nil {
		return nil, err
	}

	owner, err := resolveOwner(ctx, h.identity, cmd.UserUUID())
	if err != nil {
		return nil, err
	}

	location, feeType, destination, err := h.referenceData(ctx, selection)
	if err != nil {
		return nil, err
	}

	quote, err := h.calculator.GetCalculatorWithData(ctx, ports.CalculatorByNames{
		Price:       vehicle.Value,
		Auction:     vehicle.Auction,
		VehicleType: vehicle.Type,
		Location:    location.Name,
		FeeType:     feeType.Name,
		Destination: destination.Name,
	})
	if err != nil {
		return nil, lookupFailure(err, "calculator request failed")
	}
	detailed, breakdown, err := completeQuote(quote)
	if err != nil {
		return nil, err
	}

	terminal, ok := detailed.TerminalByID(selection.TerminalID)
	if !ok {
		return nil, errs.NotFound(fmt.Sprintf("terminal %d not found", selection.TerminalID))
	}
	destinationName := destination.Name
	if available, ok := detailed.DestinationByID(selection.DestinationID); ok {
		destinationName = available.Name
	}

	aggregate, err := order.NewOrder(vehicle, order.Pricing{
		Location:        order.Location(location),
		TerminalID:      terminal.ID,
		TerminalName:    terminal.Name,
		FeeTypeID:       feeType.ID,
		FeeTypeName:     feeType.Name,
		DestinationID:   selection.DestinationID,
		DestinationName: destinationName,
	}, owner, false, now())
	if err != nil {
		return nil, err
	}

	if err = h.addInvoice(aggregate, *breakdown); err != nil {
		return nil, err
	}

	if err = addOrder(ctx, uow, aggregate); err != nil {
		return nil, err
	}

	return aggregate, nil
}

func (h *CreateOrderCommandHandler) referenceData(
	ctx context.Context,
	selection PricingSelection,
) (pricing.Location, pricing.FeeType, pricing.Destination, error) {
	location, err := h.details.GetLocation(ctx, selection.LocationID)
	if err != nil {
		return pricing.Location{}, pricing.FeeType{}, pricing.Destination{},
			lookupFailure(err, fmt.Sprintf("location %d lookup failed", selection.LocationID))
	}
	feeType, err := h.details.GetFeeType(ctx, selection.FeeTypeID)
	if err != nil {
		return pricing.Location{}, pricing.FeeType{}, pricing.Destination{},
			lookupFailure(err, fmt.Sprintf("fee type %d lookup failed", selection.FeeTypeID))
	}
	destination, err := h.details.GetDestination(ctx, selection.DestinationID)
	if err != nil {
		return pricing.Location{}, pricing.FeeType{}, pricing.Destination{},
			lookupFailure(err, fmt.Sprintf("destination %d lookup failed", selection.DestinationID))
	}
	return location, feeType, destination, nil
}

func (h *CreateOrderCommandHandler) addInvoice(aggregate *order.Order, breakdown pricing.Breakdown) error {
	var route *services.Route
	if cheapest, ok := h.routes.Cheapest(breakdown); ok {
		route = &cheapest
	}

	items, err := h.invoices.Build(aggregate.Vehicle(), breakdown, route)
	if err != nil {
		return err
	}
	return aggregate.AddInvoiceItems(items...)
}
