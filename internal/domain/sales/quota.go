package sales

import "github.com/shopspring/decimal"

// QuotaMeasure selects what counts toward a retailer's daily quota. The
// measure is injected configuration, not a fixed rule.
type QuotaMeasure string

const (
	// QuotaMeasureAmount counts the sale's total amount toward the quota
	QuotaMeasureAmount QuotaMeasure = "amount"
	// QuotaMeasureLines counts the sale's line count toward the quota
	QuotaMeasureLines QuotaMeasure = "lines"
)

// IsValid checks if the quota measure is valid
func (m QuotaMeasure) IsValid() bool {
	switch m {
	case QuotaMeasureAmount, QuotaMeasureLines:
		return true
	}
	return false
}

// Of returns the sale's qualifying measure under this policy
func (m QuotaMeasure) Of(sale *Sale) decimal.Decimal {
	if m == QuotaMeasureLines {
		return decimal.NewFromInt(sale.LineCount())
	}
	return sale.TotalAmount
}
