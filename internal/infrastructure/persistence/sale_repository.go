package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/sales"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormSaleLedger implements SaleLedger using GORM. Sales are append-only:
// the ledger exposes no update or delete.
type GormSaleLedger struct {
	db *gorm.DB
}

// NewGormSaleLedger creates a new GormSaleLedger
func NewGormSaleLedger(db *gorm.DB) *GormSaleLedger {
	return &GormSaleLedger{db: db}
}

// Append persists a committed sale with its lines and allocations
func (r *GormSaleLedger) Append(ctx context.Context, sale *sales.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindByID finds a sale by its ID
func (r *GormSaleLedger) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var sale sales.Sale
	if err := r.db.WithContext(ctx).
		Preload("Lines.Allocations").
		Preload("Lines").
		First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// FindByRetailer finds sales made by a retailer
func (r *GormSaleLedger) FindByRetailer(ctx context.Context, retailerID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	var out []sales.Sale
	query := applyFilter(
		r.db.WithContext(ctx).Model(&sales.Sale{}).
			Preload("Lines.Allocations").
			Preload("Lines").
			Where("retailer_id = ?", retailerID),
		filter, "sold_at DESC",
	)
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindByDateRange finds sales committed within [start, end)
func (r *GormSaleLedger) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]sales.Sale, error) {
	var out []sales.Sale
	query := applyFilter(
		r.db.WithContext(ctx).Model(&sales.Sale{}).
			Preload("Lines.Allocations").
			Preload("Lines").
			Where("sold_at >= ? AND sold_at < ?", start, end),
		filter, "sold_at DESC",
	)
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// applyFilter applies pagination and ordering from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter, defaultOrder string) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order(defaultOrder)
	}

	return query
}

// Ensure GormSaleLedger implements SaleLedger
var _ sales.SaleLedger = (*GormSaleLedger)(nil)
