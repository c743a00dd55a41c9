package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// Product is a read model of the product catalog. The catalog is owned by an
// external collaborator; the sale-posting core only reads it for line
// validation and for the low-stock threshold used by alert evaluation.
type Product struct {
	shared.BaseEntity
	Name              string          `gorm:"size:255;not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LowStockThreshold int64           `gorm:"not null;default:0"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// ProductRepository defines read access to the product catalog
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindActive lists active products
	FindActive(ctx context.Context, filter shared.Filter) ([]Product, error)
}
