package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormRetailerDirectory implements RetailerDirectory using GORM
type GormRetailerDirectory struct {
	db *gorm.DB
}

// NewGormRetailerDirectory creates a new GormRetailerDirectory
func NewGormRetailerDirectory(db *gorm.DB) *GormRetailerDirectory {
	return &GormRetailerDirectory{db: db}
}

// Exists reports whether the retailer is known and active
func (r *GormRetailerDirectory) Exists(ctx context.Context, retailerID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&sales.Retailer{}).
		Where("id = ? AND active = true", retailerID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormRetailerDirectory implements RetailerDirectory
var _ sales.RetailerDirectory = (*GormRetailerDirectory)(nil)
