package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StockBatchRepository defines the interface for stock batch persistence.
//
// Batch quantity moves only through two paths: ApplyDraw inside a sale
// transaction, and Save after a disposal. ApplyDraw is a guarded decrement:
// the predicate re-checks the remaining quantity so that a plan computed on
// a stale snapshot fails with CONCURRENT_UPDATE_CONFLICT instead of
// overselling.
type StockBatchRepository interface {
	// FindByID finds a stock batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockBatch, error)

	// FindByProduct finds all batches for a product, disposed included
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)

	// FindAllocatable finds non-disposed batches with remaining stock for a
	// product, in FEFO order
	FindAllocatable(ctx context.Context, productID uuid.UUID) ([]StockBatch, error)

	// FindWithStock finds all non-disposed batches with remaining stock,
	// across products
	FindWithStock(ctx context.Context) ([]StockBatch, error)

	// FindExpired finds non-disposed batches whose expiry date is before asOf
	FindExpired(ctx context.Context, asOf time.Time) ([]StockBatch, error)

	// Save creates or updates a stock batch
	Save(ctx context.Context, batch *StockBatch) error

	// ApplyDraw decrements a batch's remaining quantity. The update only
	// matches when the batch is not disposed and still holds at least the
	// drawn quantity; zero rows affected surfaces as a concurrency conflict.
	ApplyDraw(ctx context.Context, batchID uuid.UUID, quantity int64) error
}
