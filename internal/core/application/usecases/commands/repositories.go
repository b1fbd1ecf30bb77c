// Package commands contains the operations that change orders and their
// custom invoices. Every command is built through its constructor and handled
// inside one unit of work: validation, transaction management and persistence.
package commands

import (
	"context"

	"orderflow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// CustomInvoiceRepoFactory provides access to custom invoice repository within a transaction.
	CustomInvoiceRepoFactory interface {
		CustomInvoiceRepository() ports.CustomInvoiceRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CustomInvoiceUoW manages transactions for custom invoice-only operations.
	CustomInvoiceUoW interface {
		TxManager
		CustomInvoiceRepoFactory
	}

	// CustomInvoiceUoWFactory creates new custom invoice unit of work instances.
	CustomInvoiceUoWFactory interface {
		Create() CustomInvoiceUoW
	}

	// UoW manages transactions across orders and their custom invoices.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   invoiceRepo := uow.CustomInvoiceRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		CustomInvoiceRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
