package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// SaleLedger defines the append-only record of committed sales.
// Sales are never updated or deleted through this interface.
type SaleLedger interface {
	// Append persists a committed sale with its lines and allocations
	Append(ctx context.Context, sale *Sale) error

	// FindByID finds a sale by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByRetailer finds sales made by a retailer
	FindByRetailer(ctx context.Context, retailerID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// FindByDateRange finds sales committed within [start, end)
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]Sale, error)
}

// RetailerMetricsRepository defines the interface for retailer metrics
// persistence
type RetailerMetricsRepository interface {
	// FindByRetailer finds the metrics record for a retailer
	FindByRetailer(ctx context.Context, retailerID uuid.UUID) (*RetailerMetrics, error)

	// FindAll lists every metrics record (used by the day rollover)
	FindAll(ctx context.Context) ([]RetailerMetrics, error)

	// FindTop lists metrics ordered by streak then lifetime sales, descending
	FindTop(ctx context.Context, limit int) ([]RetailerMetrics, error)

	// Save creates or updates a metrics record
	Save(ctx context.Context, metrics *RetailerMetrics) error
}

// RetailerDirectory is the user-management collaborator, reduced to the one
// question this core asks of it.
type RetailerDirectory interface {
	// Exists reports whether the retailer is known and active
	Exists(ctx context.Context, retailerID uuid.UUID) (bool, error)
}
