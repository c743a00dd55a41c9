package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/inventory"
)

// ReceiveBatchRequest records a goods receipt for one product
type ReceiveBatchRequest struct {
	ProductID    uuid.UUID
	Quantity     int64
	ExpiryDate   time.Time
	ReceivedDate time.Time
}

// DisposeBatchRequest removes a batch from circulation
type DisposeBatchRequest struct {
	BatchID uuid.UUID
	Reason  string
}

// BatchResponse is the external view of a stock batch
type BatchResponse struct {
	ID                uuid.UUID  `json:"id"`
	ProductID         uuid.UUID  `json:"product_id"`
	QuantityReceived  int64      `json:"quantity_received"`
	QuantityRemaining int64      `json:"quantity_remaining"`
	ExpiryDate        time.Time  `json:"expiry_date"`
	ReceivedDate      time.Time  `json:"received_date"`
	Disposed          bool       `json:"disposed"`
	DisposalReason    string     `json:"disposal_reason,omitempty"`
	DisposedAt        *time.Time `json:"disposed_at,omitempty"`
}

// StockLevelResponse summarizes a product's allocatable stock
type StockLevelResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	TotalStock int64           `json:"total_stock"`
	Batches    []BatchResponse `json:"batches"`
}

// StockOverviewItem summarizes one product's allocatable stock
type StockOverviewItem struct {
	ProductID  uuid.UUID `json:"product_id"`
	TotalStock int64     `json:"total_stock"`
	BatchCount int       `json:"batch_count"`
	NextExpiry time.Time `json:"next_expiry"`
}

// SweepResult reports one expiry sweep run
type SweepResult struct {
	Disposed     int         `json:"disposed"`
	UnitsRemoved int64       `json:"units_removed"`
	DisposedIDs  []uuid.UUID `json:"disposed_ids"`
}

func toBatchResponse(b *inventory.StockBatch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		QuantityReceived:  b.QuantityReceived,
		QuantityRemaining: b.QuantityRemaining,
		ExpiryDate:        b.ExpiryDate,
		ReceivedDate:      b.ReceivedDate,
		Disposed:          b.Disposed,
		DisposalReason:    b.DisposalReason,
		DisposedAt:        b.DisposedAt,
	}
}
