package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/sales"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormRetailerMetricsRepository implements RetailerMetricsRepository using GORM
type GormRetailerMetricsRepository struct {
	db *gorm.DB
}

// NewGormRetailerMetricsRepository creates a new GormRetailerMetricsRepository
func NewGormRetailerMetricsRepository(db *gorm.DB) *GormRetailerMetricsRepository {
	return &GormRetailerMetricsRepository{db: db}
}

// FindByRetailer finds the metrics record for a retailer
func (r *GormRetailerMetricsRepository) FindByRetailer(ctx context.Context, retailerID uuid.UUID) (*sales.RetailerMetrics, error) {
	var metrics sales.RetailerMetrics
	if err := r.db.WithContext(ctx).
		First(&metrics, "retailer_id = ?", retailerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &metrics, nil
}

// FindAll lists every metrics record
func (r *GormRetailerMetricsRepository) FindAll(ctx context.Context) ([]sales.RetailerMetrics, error) {
	var out []sales.RetailerMetrics
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindTop lists metrics ordered by streak then lifetime sales, descending
func (r *GormRetailerMetricsRepository) FindTop(ctx context.Context, limit int) ([]sales.RetailerMetrics, error) {
	var out []sales.RetailerMetrics
	if err := r.db.WithContext(ctx).
		Order("current_streak DESC, total_sales DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Save creates or updates a metrics record. Two transactions racing to
// create the same retailer's record hit the unique retailer_id index; the
// loser surfaces as a concurrency conflict so the caller's retry re-reads
// the winner's row.
func (r *GormRetailerMetricsRepository) Save(ctx context.Context, metrics *sales.RetailerMetrics) error {
	if err := r.db.WithContext(ctx).Save(metrics).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConcurrencyConflict
		}
		return err
	}
	return nil
}

// Ensure GormRetailerMetricsRepository implements RetailerMetricsRepository
var _ sales.RetailerMetricsRepository = (*GormRetailerMetricsRepository)(nil)
