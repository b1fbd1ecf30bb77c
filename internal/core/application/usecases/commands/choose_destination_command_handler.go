package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ChooseDestinationCommandHandler validates the destination against the
// calculator's available destinations and moves the order to PORT_CHOSEN.
// The first choice also generates the invoice items of an order that has
// none yet.
type ChooseDestinationCommandHandler struct {
	uowFactory OrderUoWFactory
	calculator ports.CalculatorClient
	notifier   ports.StatusNotifier
	routes     services.RouteSelector
	invoices   services.InvoiceBuilder
}

func NewChooseDestinationCommandHandler(
	uowFactory OrderUoWFactory,
	calculator ports.CalculatorClient,
	notifier ports.StatusNotifier,
) ChooseDestinationCommandHandler {
	return ChooseDestinationCommandHandler{
		uowFactory: uowFactory,
		calculator: calculator,
		notifier:   notifier,
		routes:     services.NewRouteSelector(),
		invoices:   services.NewInvoiceBuilder(),
	}
}

func (h *ChooseDestinationCommandHandler) Handle(ctx context.Context, cmd ChooseDestinationCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()

	current, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, orderNotFound(cmd.OrderID(), err)
	}
	if err = checkOwner(current, cmd.UserUUID()); err != nil {
		return nil, err
	}
	if _, err = current.Status().ChoosePort(); err != nil {
		return nil, err
	}

	quote, err := availablePricing(ctx, h.calculator, current)
	if err != nil {
		return nil, err
	}
	if quote.Detailed == nil {
		return nil, errs.BadRequest("calculator response missing detailed data")
	}
	destination, ok := quote.Detailed.DestinationByID(cmd.DestinationID())
	if !ok {
		return nil, errs.NotFound(fmt.Sprintf("destination id %d not found", cmd.DestinationID()))
	}

	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, orderNotFound(cmd.OrderID(), err)
	}

	previous, first, err := aggregate.ChooseDestination(destination.ID, destination.Name, now())
	if err != nil {
		return nil, err
	}

	if first && len(aggregate.Items()) == 0 {
		if quote.Breakdown == nil {
			return nil, errs.BadRequest("calculator response missing calculator data")
		}
		var route *services.Route
		if cheapest, ok := h.routes.Cheapest(*quote.Breakdown); ok {
			route = &cheapest
		}
		items, err := h.invoices.Build(aggregate.Vehicle(), *quote.Breakdown, route)
		if err != nil {
			return nil, err
		}
		if err = aggregate.AddInvoiceItems(items...); err != nil {
			return nil, err
		}
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	if previous != aggregate.Status() {
		h.notifier.StatusChanged(ctx, aggregate, previous)
	}
	return aggregate, nil
}
