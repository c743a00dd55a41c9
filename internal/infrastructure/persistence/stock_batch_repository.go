package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// fefoOrder is the allocation scan order: earliest expiry first, receipt
// date and batch ID as deterministic tie-breaks.
const fefoOrder = "expiry_date ASC, received_date ASC, id ASC"

// GormStockBatchRepository implements StockBatchRepository using GORM
type GormStockBatchRepository struct {
	db *gorm.DB
}

// NewGormStockBatchRepository creates a new GormStockBatchRepository
func NewGormStockBatchRepository(db *gorm.DB) *GormStockBatchRepository {
	return &GormStockBatchRepository{db: db}
}

// FindByID finds a stock batch by its ID
func (r *GormStockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	var batch inventory.StockBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrBatchNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindByProduct finds all batches for a product, disposed included
func (r *GormStockBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order(fefoOrder).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAllocatable finds non-disposed batches with remaining stock for a
// product, in FEFO order
func (r *GormStockBatchRepository) FindAllocatable(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND disposed = false AND quantity_remaining > 0", productID).
		Order(fefoOrder).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindWithStock finds all non-disposed batches with remaining stock
func (r *GormStockBatchRepository) FindWithStock(ctx context.Context) ([]inventory.StockBatch, error) {
	var batches []inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("disposed = false AND quantity_remaining > 0").
		Order(fefoOrder).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindExpired finds non-disposed batches whose expiry date is before asOf
func (r *GormStockBatchRepository) FindExpired(ctx context.Context, asOf time.Time) ([]inventory.StockBatch, error) {
	day := asOf.UTC().Truncate(24 * time.Hour)
	var batches []inventory.StockBatch
	if err := r.db.WithContext(ctx).
		Where("disposed = false AND expiry_date < ?", day).
		Order(fefoOrder).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a stock batch
func (r *GormStockBatchRepository) Save(ctx context.Context, batch *inventory.StockBatch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// ApplyDraw decrements a batch's remaining quantity with a guarded update.
// The WHERE predicate re-checks the remaining quantity at commit time, so a
// plan computed against stale state affects zero rows instead of driving the
// quantity negative.
func (r *GormStockBatchRepository) ApplyDraw(ctx context.Context, batchID uuid.UUID, quantity int64) error {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockBatch{}).
		Where("id = ? AND disposed = false AND quantity_remaining >= ?", batchID, quantity).
		Updates(map[string]interface{}{
			"quantity_remaining": gorm.Expr("quantity_remaining - ?", quantity),
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormStockBatchRepository implements StockBatchRepository
var _ inventory.StockBatchRepository = (*GormStockBatchRepository)(nil)
