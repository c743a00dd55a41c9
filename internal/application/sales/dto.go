package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/sales"
)

// SaleLineRequest is one requested line of a sale
type SaleLineRequest struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// PostSaleRequest is the input to PostSale
type PostSaleRequest struct {
	RetailerID uuid.UUID
	Lines      []SaleLineRequest
}

// AllocationResponse is one batch draw in a receipt line
type AllocationResponse struct {
	BatchID       uuid.UUID `json:"batch_id"`
	QuantityDrawn int64     `json:"quantity_drawn"`
}

// ReceiptLineResponse is one committed line in a sale receipt
type ReceiptLineResponse struct {
	ProductID   uuid.UUID            `json:"product_id"`
	Quantity    int64                `json:"quantity"`
	UnitPrice   decimal.Decimal      `json:"unit_price"`
	LineTotal   decimal.Decimal      `json:"line_total"`
	Allocations []AllocationResponse `json:"allocations"`
}

// SaleReceipt is the result of a committed sale: the immutable record, the
// retailer's updated metrics and any alerts raised by the touched batches.
type SaleReceipt struct {
	SaleID      uuid.UUID                 `json:"sale_id"`
	RetailerID  uuid.UUID                 `json:"retailer_id"`
	SoldAt      time.Time                 `json:"sold_at"`
	Lines       []ReceiptLineResponse     `json:"lines"`
	TotalAmount decimal.Decimal           `json:"total_amount"`
	Metrics     RetailerMetricsResponse   `json:"metrics"`
	Alerts      []inventory.ProductAlerts `json:"alerts,omitempty"`
}

// SaleResponse is the external view of a committed sale
type SaleResponse struct {
	SaleID      uuid.UUID             `json:"sale_id"`
	RetailerID  uuid.UUID             `json:"retailer_id"`
	SoldAt      time.Time             `json:"sold_at"`
	Lines       []ReceiptLineResponse `json:"lines"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
}

// RetailerMetricsResponse is the external view of a retailer's metrics
type RetailerMetricsResponse struct {
	RetailerID        uuid.UUID       `json:"retailer_id"`
	DailyQuota        decimal.Decimal `json:"daily_quota"`
	QuotaProgress     decimal.Decimal `json:"quota_progress"`
	QuotaMet          bool            `json:"quota_met"`
	CurrentStreak     int             `json:"current_streak"`
	LastQualifyingDay *time.Time      `json:"last_qualifying_day,omitempty"`
	LastSaleDay       *time.Time      `json:"last_sale_day,omitempty"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int64           `json:"total_transactions"`
}

// LeaderboardEntry is one row of the retailer leaderboard
type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	RetailerID    uuid.UUID       `json:"retailer_id"`
	CurrentStreak int             `json:"current_streak"`
	TotalSales    decimal.Decimal `json:"total_sales"`
}

func toMetricsResponse(m *sales.RetailerMetrics) RetailerMetricsResponse {
	return RetailerMetricsResponse{
		RetailerID:        m.RetailerID,
		DailyQuota:        m.DailyQuota,
		QuotaProgress:     m.QuotaProgress,
		QuotaMet:          m.QuotaMet(),
		CurrentStreak:     m.CurrentStreak,
		LastQualifyingDay: m.LastQualifyingDay,
		LastSaleDay:       m.LastSaleDay,
		TotalSales:        m.TotalSales,
		TotalTransactions: m.TotalTransactions,
	}
}

func toSaleResponse(sale *sales.Sale) SaleResponse {
	return SaleResponse{
		SaleID:      sale.ID,
		RetailerID:  sale.RetailerID,
		SoldAt:      sale.SoldAt,
		Lines:       toReceiptLines(sale),
		TotalAmount: sale.TotalAmount,
	}
}

func toReceiptLines(sale *sales.Sale) []ReceiptLineResponse {
	lines := make([]ReceiptLineResponse, 0, len(sale.Lines))
	for _, l := range sale.Lines {
		allocations := make([]AllocationResponse, 0, len(l.Allocations))
		for _, a := range l.Allocations {
			allocations = append(allocations, AllocationResponse{
				BatchID:       a.BatchID,
				QuantityDrawn: a.QuantityDrawn,
			})
		}
		lines = append(lines, ReceiptLineResponse{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal,
			Allocations: allocations,
		})
	}
	return lines
}
