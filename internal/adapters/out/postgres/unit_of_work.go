// Package postgres provides the GORM implementation of the Unit of Work.
//
// A unit of work reads through the main connection until Begin is called.
// After Begin every repository it hands out is bound to the transaction, so
// handlers re-fetch repositories after Begin:
//
//	uow := factory.Create()
//	aggregate, err := uow.OrderRepository().Get(ctx, id) // no transaction
//	...
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	aggregate, err = uow.OrderRepository().Get(ctx, id) // row locked until commit
//	...
//	return uow.Commit(ctx)
//
// Aggregates written inside the transaction have their pending changes
// cleared after a successful commit and kept after a rollback.
package postgres

import (
	"context"

	"orderflow/internal/adapters/out/postgres/custominvoicerepo"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/core/ports"

	"gorm.io/gorm"
)

type trackedAggregate interface {
	ClearChanges()
}

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory over the given connection pool.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a fresh unit of work. Instances are not safe for concurrent use.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork implements ports.UnitOfWork on top of a GORM transaction.
// Repositories it returns are bound to the transaction once Begin was called.
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	tracked []trackedAggregate
}

// Begin starts a transaction. Calling it again while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit commits the open transaction and, on success, clears the pending
// changes of every aggregate written in it. Without an open transaction it
// returns gorm.ErrInvalidTransaction.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err == nil {
		for _, aggregate := range uow.tracked {
			aggregate.ClearChanges()
		}
	}
	uow.tracked = nil
	return err
}

// Rollback discards the transaction. Without an open transaction it returns
// gorm.ErrInvalidTransaction, which deferred rollbacks ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.tracked = nil
	return err
}

// OrderRepository returns an order repository bound to the current
// transaction, or to the main connection before Begin.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// CustomInvoiceRepository returns a custom invoice repository bound to the
// current transaction, or to the main connection before Begin.
func (uow *GormUnitOfWork) CustomInvoiceRepository() ports.CustomInvoiceRepository {
	return custominvoicerepo.NewGormCustomInvoiceRepository(uow.conn())
}

// Track registers an aggregate written by a repository. Outside a
// transaction the write is already durable, so its changes are cleared at once.
func (uow *GormUnitOfWork) Track(aggregate interface{ ClearChanges() }) {
	if uow.tx == nil {
		aggregate.ClearChanges()
		return
	}
	uow.tracked = append(uow.tracked, aggregate)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
