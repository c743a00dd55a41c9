package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newMetrics(t *testing.T, quota float64) *RetailerMetrics {
	t.Helper()
	m, err := NewRetailerMetrics(uuid.New(), decimal.NewFromFloat(quota))
	require.NoError(t, err)
	return m
}

func TestNewRetailerMetrics(t *testing.T) {
	t.Run("starts with no streak and zero progress", func(t *testing.T) {
		m := newMetrics(t, 500)
		assert.Equal(t, 0, m.CurrentStreak)
		assert.True(t, m.QuotaProgress.IsZero())
		assert.Nil(t, m.LastQualifyingDay)
	})

	t.Run("rejects negative quota", func(t *testing.T) {
		_, err := NewRetailerMetrics(uuid.New(), decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestApplySaleStreaks(t *testing.T) {
	amount := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

	t.Run("meeting quota starts a streak of one", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		assert.Equal(t, 1, m.CurrentStreak)
		require.NotNil(t, m.LastQualifyingDay)
		assert.Equal(t, day(2024, 1, 1), *m.LastQualifyingDay)
	})

	t.Run("quota met on consecutive days extends the streak", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.ApplySale(amount(150), amount(150), day(2024, 1, 2))
		assert.Equal(t, 2, m.CurrentStreak)
	})

	t.Run("streak increments only once per day", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.ApplySale(amount(300), amount(300), day(2024, 1, 1))
		assert.Equal(t, 1, m.CurrentStreak)
	})

	t.Run("quota met across multiple sales in one day", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(60), amount(60), day(2024, 1, 1))
		assert.Equal(t, 0, m.CurrentStreak)
		m.ApplySale(amount(60), amount(60), day(2024, 1, 1))
		assert.Equal(t, 1, m.CurrentStreak)
	})

	t.Run("gap day restarts the streak at one", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.ApplySale(amount(120), amount(120), day(2024, 1, 2))
		assert.Equal(t, 2, m.CurrentStreak)

		// no qualifying sale on Jan 3
		m.ApplySale(amount(120), amount(120), day(2024, 1, 4))
		assert.Equal(t, 1, m.CurrentStreak)
	})

	t.Run("daily progress resets at the day boundary", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(80), amount(80), day(2024, 1, 1))
		m.ApplySale(amount(30), amount(30), day(2024, 1, 2))
		assert.True(t, m.QuotaProgress.Equal(amount(30)))
		assert.Equal(t, 0, m.CurrentStreak)
	})

	t.Run("lifetime totals accumulate across days", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(80), amount(80), day(2024, 1, 1))
		m.ApplySale(amount(30), amount(30), day(2024, 1, 2))
		assert.True(t, m.TotalSales.Equal(amount(110)))
		assert.Equal(t, int64(2), m.TotalTransactions)
	})

	t.Run("line-count measure tracks quota independently of amount", func(t *testing.T) {
		m := newMetrics(t, 3)
		// two lines toward a quota of three, amount is irrelevant
		m.ApplySale(decimal.NewFromInt(2), amount(999), day(2024, 1, 1))
		assert.Equal(t, 0, m.CurrentStreak)
		m.ApplySale(decimal.NewFromInt(1), amount(1), day(2024, 1, 1))
		assert.Equal(t, 1, m.CurrentStreak)
	})
}

func TestRollover(t *testing.T) {
	amount := func(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

	t.Run("missed day breaks the streak", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.ApplySale(amount(120), amount(120), day(2024, 1, 2))
		assert.Equal(t, 2, m.CurrentStreak)

		m.Rollover(day(2024, 1, 4))
		assert.Equal(t, 0, m.CurrentStreak)
	})

	t.Run("rollover on the following day keeps the streak alive", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.Rollover(day(2024, 1, 2))
		assert.Equal(t, 1, m.CurrentStreak)
	})

	t.Run("rollover is idempotent", func(t *testing.T) {
		m := newMetrics(t, 100)
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.Rollover(day(2024, 1, 4))
		m.Rollover(day(2024, 1, 4))
		assert.Equal(t, 0, m.CurrentStreak)
		assert.True(t, m.QuotaProgress.IsZero())
	})

	t.Run("spec scenario: streak two then reset", func(t *testing.T) {
		m := newMetrics(t, 100)
		// quota met on day D and D+1
		m.ApplySale(amount(120), amount(120), day(2024, 1, 1))
		m.ApplySale(amount(120), amount(120), day(2024, 1, 2))
		assert.Equal(t, 2, m.CurrentStreak)

		// quota not met on D+2; rollover check afterwards resets to zero
		m.ApplySale(amount(10), amount(10), day(2024, 1, 3))
		m.Rollover(day(2024, 1, 4))
		assert.Equal(t, 0, m.CurrentStreak)
	})
}

func TestQuotaMeasure(t *testing.T) {
	sale, err := NewSale(uuid.New(), time.Now(), []SaleLine{
		testLine(uuid.New(), 2, 25, 2),
		testLine(uuid.New(), 1, 10, 1),
	})
	require.NoError(t, err)

	assert.True(t, QuotaMeasureAmount.Of(sale).Equal(decimal.NewFromInt(60)))
	assert.True(t, QuotaMeasureLines.Of(sale).Equal(decimal.NewFromInt(2)))

	assert.True(t, QuotaMeasureAmount.IsValid())
	assert.True(t, QuotaMeasureLines.IsValid())
	assert.False(t, QuotaMeasure("revenue").IsValid())
}
