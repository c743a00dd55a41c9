package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// BatchAllocation records how much of a sale line was drawn from one batch
type BatchAllocation struct {
	shared.BaseEntity
	SaleLineID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchID       uuid.UUID `gorm:"type:uuid;not null;index"`
	QuantityDrawn int64     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BatchAllocation) TableName() string {
	return "sale_batch_allocations"
}

// SaleLine is one line of a sale with its per-batch allocation breakdown
type SaleLine struct {
	shared.BaseEntity
	SaleID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID         `gorm:"type:uuid;not null;index"`
	Quantity    int64             `gorm:"not null"`
	UnitPrice   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	Allocations []BatchAllocation `gorm:"foreignKey:SaleLineID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleLine) TableName() string {
	return "sale_lines"
}

// Sale is an immutable record of a committed sale. It is constructed and
// persisted once by the sales service; corrections are modeled as new
// compensating records, never as in-place mutation.
type Sale struct {
	shared.BaseEntity
	RetailerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	SoldAt      time.Time       `gorm:"not null;index"`
	Lines       []SaleLine      `gorm:"foreignKey:SaleID;references:ID"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale constructs a sale and validates its invariants: at least one line,
// positive quantities, and per line the allocation draws summing exactly to
// the line quantity.
func NewSale(retailerID uuid.UUID, soldAt time.Time, lines []SaleLine) (*Sale, error) {
	if retailerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Retailer ID is required")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE", "Sale must contain at least one line")
	}

	saleID := shared.NewBaseEntity()
	total := decimal.Zero
	for i := range lines {
		line := &lines[i]
		if line.Quantity <= 0 {
			return nil, shared.ErrInvalidLine
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_LINE", "Unit price cannot be negative")
		}

		var drawn int64
		for _, a := range line.Allocations {
			drawn += a.QuantityDrawn
		}
		if drawn != line.Quantity {
			return nil, shared.NewDomainError("INVALID_LINE", "Allocation records do not cover the line quantity")
		}

		line.BaseEntity = shared.NewBaseEntity()
		line.SaleID = saleID.ID
		for j := range line.Allocations {
			line.Allocations[j].BaseEntity = shared.NewBaseEntity()
			line.Allocations[j].SaleLineID = line.ID
		}

		line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity))
		total = total.Add(line.LineTotal)
	}

	return &Sale{
		BaseEntity:  saleID,
		RetailerID:  retailerID,
		SoldAt:      soldAt,
		Lines:       lines,
		TotalAmount: total,
	}, nil
}

// LineCount returns the number of lines in the sale
func (s *Sale) LineCount() int64 {
	return int64(len(s.Lines))
}

// TouchedBatches returns the IDs of every batch drawn from by this sale
func (s *Sale) TouchedBatches() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, line := range s.Lines {
		for _, a := range line.Allocations {
			if _, ok := seen[a.BatchID]; !ok {
				seen[a.BatchID] = struct{}{}
				ids = append(ids, a.BatchID)
			}
		}
	}
	return ids
}
