package sales

import (
	"context"

	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/sales"
)

// TransactionScope provides transactional access to the repositories a sale
// commit touches. Everything executed inside one scope is committed or
// rolled back as a unit; the sale record, the batch decrements and the
// metrics update are never visible separately.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the sale-commit repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// BatchRepo returns the stock batch repository scoped to the transaction
	BatchRepo() inventory.StockBatchRepository
	// LedgerRepo returns the sale ledger scoped to the transaction
	LedgerRepo() sales.SaleLedger
	// MetricsRepo returns the retailer metrics repository scoped to the transaction
	MetricsRepo() sales.RetailerMetricsRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests where the fake repositories are already atomic.
type NoOpTransactionScope struct {
	batchRepo   inventory.StockBatchRepository
	ledgerRepo  sales.SaleLedger
	metricsRepo sales.RetailerMetricsRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories.
func NewNoOpTransactionScope(
	batchRepo inventory.StockBatchRepository,
	ledgerRepo sales.SaleLedger,
	metricsRepo sales.RetailerMetricsRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo:   batchRepo,
		ledgerRepo:  ledgerRepo,
		metricsRepo: metricsRepo,
	}
}

// Execute runs the function without transactional guarantees.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BatchRepo returns the stock batch repository.
func (s *NoOpTransactionScope) BatchRepo() inventory.StockBatchRepository {
	return s.batchRepo
}

// LedgerRepo returns the sale ledger.
func (s *NoOpTransactionScope) LedgerRepo() sales.SaleLedger {
	return s.ledgerRepo
}

// MetricsRepo returns the retailer metrics repository.
func (s *NoOpTransactionScope) MetricsRepo() sales.RetailerMetricsRepository {
	return s.metricsRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
