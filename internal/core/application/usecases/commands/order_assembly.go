package commands

import (
	"context"
	"fmt"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ensureNewLot is the early duplicate check. The unique constraints checked
// at commit stay authoritative.
func ensureNewLot(ctx context.Context, repo ports.OrderRepository, lotID int64, vin string) error {
	exists, err := repo.ExistsByLotID(ctx, lotID)
	if err != nil {
		return err
	}
	if exists {
		return errs.Conflict(fmt.Sprintf("order with lot id %d already exists", lotID))
	}

	exists, err = repo.ExistsByVIN(ctx, vin)
	if err != nil {
		return err
	}
	if exists {
		return errs.Conflict(fmt.Sprintf("order with vin %s already exists", vin))
	}
	return nil
}

func resolveOwner(ctx context.Context, identity ports.IdentityClient, userUUID string) (order.Owner, error) {
	user, err := identity.GetUser(ctx, userUUID)
	if err != nil {
		return order.Owner{}, lookupFailure(err, fmt.Sprintf("user %s lookup failed", userUUID))
	}
	return order.Owner{UUID: userUUID, Name: user.DisplayName(), Email: user.Email}, nil
}

// completeQuote returns both parts of a calculator response or BadRequest.
func completeQuote(quote pricing.Quote) (*pricing.DetailedData, *pricing.Breakdown, error) {
	if quote.Detailed == nil {
		return nil, nil, errs.BadRequest("calculator response missing detailed data")
	}
	if quote.Breakdown == nil {
		return nil, nil, errs.BadRequest("calculator response missing calculator data")
	}
	return quote.Detailed, quote.Breakdown, nil
}

// addOrder persists a new order in its own transaction.
func addOrder(ctx context.Context, uow OrderUoW, aggregate *order.Order) error {
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.OrderRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
