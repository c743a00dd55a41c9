package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// RetailerMetrics tracks one retailer's daily quota progress, streak and
// lifetime totals. It is created lazily on the retailer's first sale and
// mutated only inside the sale transaction or by the day rollover.
type RetailerMetrics struct {
	shared.BaseEntity
	RetailerID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	DailyQuota        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuotaProgress     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // resets at the day boundary
	CurrentStreak     int             `gorm:"not null;default:0"`
	LastQualifyingDay *time.Time      // most recent day the quota was met
	LastSaleDay       *time.Time
	TotalSales        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTransactions int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (RetailerMetrics) TableName() string {
	return "retailer_metrics"
}

// NewRetailerMetrics creates a fresh metrics record with the given quota
func NewRetailerMetrics(retailerID uuid.UUID, dailyQuota decimal.Decimal) (*RetailerMetrics, error) {
	if retailerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Retailer ID is required")
	}
	if dailyQuota.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Daily quota cannot be negative")
	}
	return &RetailerMetrics{
		BaseEntity:    shared.NewBaseEntity(),
		RetailerID:    retailerID,
		DailyQuota:    dailyQuota,
		QuotaProgress: decimal.Zero,
		TotalSales:    decimal.Zero,
	}, nil
}

// QuotaMet returns true if today's progress has reached the quota target
func (m *RetailerMetrics) QuotaMet() bool {
	return m.QuotaProgress.GreaterThanOrEqual(m.DailyQuota)
}

// ApplySale records a committed sale's qualifying measure against the quota
// and runs the streak transition. today is the calendar day of the sale.
//
// The streak increments at most once per calendar day: only when the quota
// is newly met today. If the previous qualifying day was exactly yesterday
// the streak continues, otherwise it restarts at one.
func (m *RetailerMetrics) ApplySale(measure, amount decimal.Decimal, today time.Time) {
	day := dateOf(today)
	m.Rollover(day)

	metBefore := m.sameDay(m.LastSaleDay, day) && m.QuotaMet()

	m.QuotaProgress = m.QuotaProgress.Add(measure)
	m.TotalSales = m.TotalSales.Add(amount)
	m.TotalTransactions++
	m.LastSaleDay = &day

	if !metBefore && m.QuotaMet() {
		yesterday := day.AddDate(0, 0, -1)
		if m.LastQualifyingDay != nil && m.LastQualifyingDay.Equal(yesterday) {
			m.CurrentStreak++
		} else {
			m.CurrentStreak = 1
		}
		m.LastQualifyingDay = &day
	}
	m.Touch()
}

// Rollover performs the lazy day-boundary check: progress from a previous
// day is cleared, and a streak whose last qualifying day is more than one
// day in the past is broken. Safe to call repeatedly with the same day.
func (m *RetailerMetrics) Rollover(asOf time.Time) {
	day := dateOf(asOf)

	if m.LastSaleDay != nil && m.LastSaleDay.Before(day) {
		m.QuotaProgress = decimal.Zero
	}
	if m.CurrentStreak > 0 {
		yesterday := day.AddDate(0, 0, -1)
		if m.LastQualifyingDay == nil || m.LastQualifyingDay.Before(yesterday) {
			m.CurrentStreak = 0
		}
	}
}

// SetQuota updates the daily quota target
func (m *RetailerMetrics) SetQuota(quota decimal.Decimal) error {
	if quota.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Daily quota cannot be negative")
	}
	m.DailyQuota = quota
	m.Touch()
	return nil
}

func (m *RetailerMetrics) sameDay(d *time.Time, day time.Time) bool {
	return d != nil && d.Equal(day)
}

// dateOf normalizes a timestamp to midnight UTC
func dateOf(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
