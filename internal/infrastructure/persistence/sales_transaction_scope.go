package persistence

import (
	"context"

	appsales "github.com/stockadoodle/backend/internal/application/sales"
	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// The sale commit's batch decrements, ledger append and metrics update all
// run against the same transaction handle.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides access to the sale commit's
// repositories scoped to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// BatchRepo returns the stock batch repository scoped to the current transaction
func (r *gormTransactionalRepositories) BatchRepo() inventory.StockBatchRepository {
	return NewGormStockBatchRepository(r.tx)
}

// LedgerRepo returns the sale ledger scoped to the current transaction
func (r *gormTransactionalRepositories) LedgerRepo() sales.SaleLedger {
	return NewGormSaleLedger(r.tx)
}

// MetricsRepo returns the retailer metrics repository scoped to the current transaction
func (r *gormTransactionalRepositories) MetricsRepo() sales.RetailerMetricsRepository {
	return NewGormRetailerMetricsRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appsales.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appsales.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
