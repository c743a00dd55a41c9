package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLine(productID uuid.UUID, qty int64, price float64, draws ...int64) SaleLine {
	allocations := make([]BatchAllocation, 0, len(draws))
	for _, d := range draws {
		allocations = append(allocations, BatchAllocation{BatchID: uuid.New(), QuantityDrawn: d})
	}
	return SaleLine{
		ProductID:   productID,
		Quantity:    qty,
		UnitPrice:   decimal.NewFromFloat(price),
		Allocations: allocations,
	}
}

func TestNewSale(t *testing.T) {
	retailerID := uuid.New()
	now := time.Now()

	t.Run("computes line totals and sale total", func(t *testing.T) {
		sale, err := NewSale(retailerID, now, []SaleLine{
			testLine(uuid.New(), 3, 10.50, 3),
			testLine(uuid.New(), 2, 4.25, 1, 1),
		})
		require.NoError(t, err)
		assert.True(t, sale.Lines[0].LineTotal.Equal(decimal.NewFromFloat(31.50)))
		assert.True(t, sale.Lines[1].LineTotal.Equal(decimal.NewFromFloat(8.50)))
		assert.True(t, sale.TotalAmount.Equal(decimal.NewFromFloat(40.00)))
		assert.Equal(t, int64(2), sale.LineCount())
	})

	t.Run("rejects empty line list", func(t *testing.T) {
		_, err := NewSale(retailerID, now, nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewSale(retailerID, now, []SaleLine{testLine(uuid.New(), 0, 10)})
		assert.Error(t, err)
	})

	t.Run("rejects allocations that do not cover the line", func(t *testing.T) {
		_, err := NewSale(retailerID, now, []SaleLine{testLine(uuid.New(), 5, 10, 3)})
		assert.Error(t, err)

		_, err = NewSale(retailerID, now, []SaleLine{testLine(uuid.New(), 5, 10, 3, 3)})
		assert.Error(t, err)
	})

	t.Run("rejects nil retailer", func(t *testing.T) {
		_, err := NewSale(uuid.Nil, now, []SaleLine{testLine(uuid.New(), 1, 10, 1)})
		assert.Error(t, err)
	})
}

func TestSaleTouchedBatches(t *testing.T) {
	retailerID := uuid.New()
	batchID := uuid.New()

	lineA := SaleLine{
		ProductID: uuid.New(),
		Quantity:  4,
		UnitPrice: decimal.NewFromInt(2),
		Allocations: []BatchAllocation{
			{BatchID: batchID, QuantityDrawn: 4},
		},
	}
	lineB := SaleLine{
		ProductID: uuid.New(),
		Quantity:  3,
		UnitPrice: decimal.NewFromInt(1),
		Allocations: []BatchAllocation{
			{BatchID: batchID, QuantityDrawn: 2},
			{BatchID: uuid.New(), QuantityDrawn: 1},
		},
	}

	sale, err := NewSale(retailerID, time.Now(), []SaleLine{lineA, lineB})
	require.NoError(t, err)

	touched := sale.TouchedBatches()
	assert.Len(t, touched, 2)
	assert.Contains(t, touched, batchID)
}
