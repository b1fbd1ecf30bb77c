package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ChangeOrderStatusCommandHandler applies a status transition, stores the
// order with its new history entry and notifies the owner after commit.
type ChangeOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	notifier   ports.StatusNotifier
}

func NewChangeOrderStatusCommandHandler(uowFactory UoWFactory, notifier ports.StatusNotifier) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
	}
}

func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transition(ctx, cmd.OrderID(), func(uow UoW, aggregate *order.Order) (order.Status, error) {
		at := now()
		switch cmd.Transition() {
		case TransitionPublishInvoice:
			return aggregate.PublishInvoice(at)
		case TransitionMoveToCustomAgency:
			return aggregate.MoveToCustomAgency(at)
		case TransitionAttachCustomInvoice:
			if _, err := aggregate.Status().AttachCustomInvoice(); err != nil {
				return order.Unknown, err
			}
			invoice, err := uow.CustomInvoiceRepository().GetCurrentByOrderID(ctx, aggregate.ID())
			if err != nil && !errs.IsKind(err, errs.KindNotFound) {
				return order.Unknown, err
			}
			return aggregate.AttachCustomInvoice(invoice, at)
		default:
			return aggregate.Deliver(at)
		}
	})
}

// HandleTrackingLink sets the tracking link. Repeating it while the order is
// already TRACKING_ADDED replaces the link.
func (h *ChangeOrderStatusCommandHandler) HandleTrackingLink(ctx context.Context, cmd AddTrackingLinkCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.transition(ctx, cmd.OrderID(), func(_ UoW, aggregate *order.Order) (order.Status, error) {
		return aggregate.AddTrackingLink(cmd.Link(), now())
	})
}

func (h *ChangeOrderStatusCommandHandler) transition(
	ctx context.Context,
	orderID int64,
	apply func(UoW, *order.Order) (order.Status, error),
) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	aggregate, err := repo.Get(ctx, orderID)
	if err != nil {
		return nil, orderNotFound(orderID, err)
	}

	previous, err := apply(uow, aggregate)
	if err != nil {
		return nil, err
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.notifier.StatusChanged(ctx, aggregate, previous)
	return aggregate, nil
}
