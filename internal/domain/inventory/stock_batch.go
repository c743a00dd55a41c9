package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// StockBatch represents a discrete lot of a product received at one time,
// tracked separately so that expiry-dated stock can be sold in FEFO order.
type StockBatch struct {
	shared.BaseEntity
	ProductID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_batches_fefo,priority:1"`
	QuantityReceived  int64      `gorm:"not null"`
	QuantityRemaining int64      `gorm:"not null;check:quantity_remaining >= 0"`
	ExpiryDate        time.Time  `gorm:"not null;index:idx_stock_batches_fefo,priority:2"` // date precision, midnight UTC
	ReceivedDate      time.Time  `gorm:"not null"`
	Disposed          bool       `gorm:"not null;default:false"`
	DisposalReason    string     `gorm:"size:255"`
	DisposedAt        *time.Time
}

// TableName returns the table name for GORM
func (StockBatch) TableName() string {
	return "stock_batches"
}

// NewStockBatch creates a new stock batch on goods receipt.
// The full received quantity starts as remaining.
func NewStockBatch(productID uuid.UUID, quantity int64, expiryDate, receivedDate time.Time) (*StockBatch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID is required")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Batch quantity must be positive")
	}
	return &StockBatch{
		BaseEntity:        shared.NewBaseEntity(),
		ProductID:         productID,
		QuantityReceived:  quantity,
		QuantityRemaining: quantity,
		ExpiryDate:        truncateToDay(expiryDate),
		ReceivedDate:      receivedDate,
	}, nil
}

// HasStock returns true if the batch still has allocatable quantity
func (b *StockBatch) HasStock() bool {
	return !b.Disposed && b.QuantityRemaining > 0
}

// IsExpired returns true if the batch's expiry date is before asOf
func (b *StockBatch) IsExpired(asOf time.Time) bool {
	return b.ExpiryDate.Before(truncateToDay(asOf))
}

// DaysUntilExpiry returns whole days from asOf until expiry (negative if past)
func (b *StockBatch) DaysUntilExpiry(asOf time.Time) int {
	return int(b.ExpiryDate.Sub(truncateToDay(asOf)).Hours() / 24)
}

// Draw decrements the remaining quantity. The remaining quantity never goes
// negative; a draw exceeding it is rejected rather than clamped, because the
// allocation plan is computed against the same state before being applied.
func (b *StockBatch) Draw(quantity int64) error {
	if b.Disposed {
		return shared.ErrAlreadyDisposed
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Draw quantity must be positive")
	}
	if quantity > b.QuantityRemaining {
		return shared.ErrInsufficientStock
	}
	b.QuantityRemaining -= quantity
	b.Touch()
	return nil
}

// Dispose marks the batch as disposed. Disposed batches are never allocated
// against and a second disposal is rejected.
func (b *StockBatch) Dispose(reason string, at time.Time) error {
	if b.Disposed {
		return shared.ErrAlreadyDisposed
	}
	b.Disposed = true
	b.DisposalReason = reason
	b.DisposedAt = &at
	b.UpdatedAt = at
	return nil
}

// truncateToDay normalizes a timestamp to midnight UTC so that expiry
// comparisons are calendar-date comparisons.
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
