package commands

import (
	"errors"
	"fmt"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrPurgeStaleCustomInvoicesCommandIsNotConstructed = errors.New(
	"PurgeStaleCustomInvoicesCommand must be created via NewPurgeStaleCustomInvoicesCommand constructor",
)

// PurgeStaleCustomInvoicesCommand removes PENDING custom invoices whose
// upload was requested more than ttl before now.
type PurgeStaleCustomInvoicesCommand struct { //nolint:recvcheck //using for validation
	cutoff time.Time

	guard guard.ConstructorGuard
}

func NewPurgeStaleCustomInvoicesCommand(at time.Time, ttl time.Duration) (PurgeStaleCustomInvoicesCommand, error) {
	if ttl <= 0 {
		return PurgeStaleCustomInvoicesCommand{}, errs.NewValueIsInvalidErrorWithCause("ttl", fmt.Errorf("%s is not positive", ttl))
	}
	return PurgeStaleCustomInvoicesCommand{cutoff: at.Add(-ttl), guard: guard.NewConstructorGuard()}, nil
}

func (c PurgeStaleCustomInvoicesCommand) Validate() error {
	return c.guard.Validate(ErrPurgeStaleCustomInvoicesCommandIsNotConstructed)
}

func (c PurgeStaleCustomInvoicesCommand) Cutoff() time.Time { return c.cutoff }
