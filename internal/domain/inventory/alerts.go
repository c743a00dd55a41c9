package inventory

import (
	"time"

	"github.com/google/uuid"
)

// ProductAlerts carries the alert signals for one product's batch snapshot
type ProductAlerts struct {
	ProductID  uuid.UUID   `json:"product_id"`
	LowStock   bool        `json:"low_stock"`
	TotalStock int64       `json:"total_stock"`
	NearExpiry []uuid.UUID `json:"near_expiry,omitempty"`
}

// EvaluateAlerts computes low-stock and near-expiry signals over a snapshot
// of one product's batches. It is pure: the caller supplies asOf, and the
// same snapshot always yields the same result.
//
// Low stock triggers when total remaining stock across non-disposed batches
// is at or below the threshold; zero stock is a low-stock condition.
// Near expiry triggers per batch with remaining stock when the expiry date
// falls within [asOf, asOf+windowDays].
func EvaluateAlerts(productID uuid.UUID, batches []StockBatch, lowStockThreshold int64, asOf time.Time, expiryWindowDays int) ProductAlerts {
	alerts := ProductAlerts{ProductID: productID}

	for _, b := range batches {
		if b.ProductID != productID || !b.HasStock() {
			continue
		}
		alerts.TotalStock += b.QuantityRemaining

		days := b.DaysUntilExpiry(asOf)
		if days >= 0 && days <= expiryWindowDays {
			alerts.NearExpiry = append(alerts.NearExpiry, b.ID)
		}
	}

	alerts.LowStock = alerts.TotalStock <= lowStockThreshold
	return alerts
}
