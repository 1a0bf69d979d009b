// Package mysql provides the GORM implementations of the ledger repositories
// and the transactional unit of work.
package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/wyfcoding/stocktrading/internal/ledger/domain"
)

// UnitOfWork runs ledger use cases inside a single database transaction.
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates the transactional boundary over db.
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Execute opens a transaction, binds all repositories to it and runs fn.
// Any error rolls the whole unit back.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(r domain.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(domain.Repositories{
			Holdings:     NewHoldingRepository(tx),
			Transactions: NewTransactionRepository(tx),
			Accounts:     NewAccountRepository(tx),
			Snapshots:    NewSnapshotRepository(tx),
		})
	})
}

// AutoMigrate creates the ledger tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Account{},
		&domain.Holding{},
		&domain.Transaction{},
		&domain.PerformanceSnapshot{},
	)
}
