package inventory

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockadoodle/backend/internal/domain/catalog"
	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBatchRepo struct {
	batches map[uuid.UUID]inventory.StockBatch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uuid.UUID]inventory.StockBatch)}
}

func (r *fakeBatchRepo) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, shared.ErrBatchNotFound
	}
	return &b, nil
}

func (r *fakeBatchRepo) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var out []inventory.StockBatch
	for _, b := range r.batches {
		if b.ProductID == productID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindAllocatable(ctx context.Context, productID uuid.UUID) ([]inventory.StockBatch, error) {
	var out []inventory.StockBatch
	for _, b := range r.batches {
		if b.ProductID == productID && b.HasStock() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *fakeBatchRepo) FindWithStock(ctx context.Context) ([]inventory.StockBatch, error) {
	var out []inventory.StockBatch
	for _, b := range r.batches {
		if b.HasStock() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) FindExpired(ctx context.Context, asOf time.Time) ([]inventory.StockBatch, error) {
	var out []inventory.StockBatch
	for _, b := range r.batches {
		if !b.Disposed && b.IsExpired(asOf) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBatchRepo) Save(ctx context.Context, batch *inventory.StockBatch) error {
	r.batches[batch.ID] = *batch
	return nil
}

func (r *fakeBatchRepo) ApplyDraw(ctx context.Context, batchID uuid.UUID, quantity int64) error {
	b, ok := r.batches[batchID]
	if !ok || b.Disposed || b.QuantityRemaining < quantity {
		return shared.ErrConcurrencyConflict
	}
	b.QuantityRemaining -= quantity
	r.batches[batchID] = b
	return nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]catalog.Product
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

type fixture struct {
	batches  *fakeBatchRepo
	products *fakeProductRepo
	service  *InventoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	batches := newFakeBatchRepo()
	products := &fakeProductRepo{products: make(map[uuid.UUID]catalog.Product)}
	return &fixture{
		batches:  batches,
		products: products,
		service:  NewInventoryService(batches, products, zap.NewNop()),
	}
}

func (f *fixture) addProduct(threshold int64) uuid.UUID {
	p := catalog.Product{
		BaseEntity:        shared.NewBaseEntity(),
		Name:              "Test Product",
		UnitPrice:         decimal.NewFromInt(5),
		LowStockThreshold: threshold,
		Active:            true,
	}
	f.products.products[p.ID] = p
	return p.ID
}

func (f *fixture) addBatch(t *testing.T, productID uuid.UUID, qty int64, expiry time.Time) uuid.UUID {
	t.Helper()
	batch, err := inventory.NewStockBatch(productID, qty, expiry, expiry.AddDate(0, 0, -30))
	require.NoError(t, err)
	require.NoError(t, f.batches.Save(context.Background(), batch))
	return batch.ID
}

func daysFromNow(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, days)
}

func TestInventoryService_ReceiveBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("should create a batch with the full quantity remaining", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)

		resp, err := f.service.ReceiveBatch(ctx, ReceiveBatchRequest{
			ProductID:  productID,
			Quantity:   24,
			ExpiryDate: daysFromNow(30),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(24), resp.QuantityReceived)
		assert.Equal(t, int64(24), resp.QuantityRemaining)
		assert.False(t, resp.Disposed)

		saved, err := f.batches.FindByID(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(24), saved.QuantityRemaining)
	})

	t.Run("should reject an unknown product", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.ReceiveBatch(ctx, ReceiveBatchRequest{
			ProductID:  uuid.New(),
			Quantity:   10,
			ExpiryDate: daysFromNow(30),
		})

		assert.ErrorIs(t, err, shared.ErrProductNotFound)
	})

	t.Run("should reject a non-positive quantity", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)

		_, err := f.service.ReceiveBatch(ctx, ReceiveBatchRequest{
			ProductID:  productID,
			Quantity:   0,
			ExpiryDate: daysFromNow(30),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})
}

func TestInventoryService_DisposeBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("should dispose a batch permanently", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)
		batchID := f.addBatch(t, productID, 10, daysFromNow(30))

		resp, err := f.service.DisposeBatch(ctx, DisposeBatchRequest{BatchID: batchID, Reason: "damaged"})

		require.NoError(t, err)
		assert.True(t, resp.Disposed)
		assert.Equal(t, "damaged", resp.DisposalReason)
		require.NotNil(t, resp.DisposedAt)
	})

	t.Run("should reject disposing twice", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)
		batchID := f.addBatch(t, productID, 10, daysFromNow(30))

		_, err := f.service.DisposeBatch(ctx, DisposeBatchRequest{BatchID: batchID, Reason: "damaged"})
		require.NoError(t, err)

		_, err = f.service.DisposeBatch(ctx, DisposeBatchRequest{BatchID: batchID, Reason: "again"})
		assert.ErrorIs(t, err, shared.ErrAlreadyDisposed)
	})

	t.Run("should reject an unknown batch", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.DisposeBatch(ctx, DisposeBatchRequest{BatchID: uuid.New(), Reason: "damaged"})

		assert.ErrorIs(t, err, shared.ErrBatchNotFound)
	})
}

func TestInventoryService_SweepExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("should dispose expired batches and leave the rest", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)
		expired := f.addBatch(t, productID, 5, daysFromNow(-2))
		fresh := f.addBatch(t, productID, 8, daysFromNow(30))

		result, err := f.service.SweepExpired(ctx, time.Now())

		require.NoError(t, err)
		assert.Equal(t, 1, result.Disposed)
		assert.Equal(t, int64(5), result.UnitsRemoved)
		assert.Equal(t, []uuid.UUID{expired}, result.DisposedIDs)

		swept, err := f.batches.FindByID(ctx, expired)
		require.NoError(t, err)
		assert.True(t, swept.Disposed)
		assert.Equal(t, "expired", swept.DisposalReason)

		kept, err := f.batches.FindByID(ctx, fresh)
		require.NoError(t, err)
		assert.False(t, kept.Disposed)
	})

	t.Run("should be idempotent within a day", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)
		f.addBatch(t, productID, 5, daysFromNow(-2))

		first, err := f.service.SweepExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1, first.Disposed)

		second, err := f.service.SweepExpired(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 0, second.Disposed)
		assert.Empty(t, second.DisposedIDs)
	})

	t.Run("should not dispose a batch expiring today", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)
		f.addBatch(t, productID, 5, time.Now())

		result, err := f.service.SweepExpired(ctx, time.Now())

		require.NoError(t, err)
		assert.Equal(t, 0, result.Disposed)
	})
}

func TestInventoryService_GetStock(t *testing.T) {
	ctx := context.Background()

	t.Run("should list allocatable batches in expiry order with the total", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(0)
		late := f.addBatch(t, productID, 8, daysFromNow(60))
		early := f.addBatch(t, productID, 5, daysFromNow(30))

		disposed := f.addBatch(t, productID, 99, daysFromNow(45))
		_, err := f.service.DisposeBatch(ctx, DisposeBatchRequest{BatchID: disposed, Reason: "recall"})
		require.NoError(t, err)

		resp, err := f.service.GetStock(ctx, productID)

		require.NoError(t, err)
		assert.Equal(t, int64(13), resp.TotalStock)
		require.Len(t, resp.Batches, 2)
		assert.Equal(t, early, resp.Batches[0].ID)
		assert.Equal(t, late, resp.Batches[1].ID)
	})

	t.Run("should reject an unknown product", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.service.GetStock(ctx, uuid.New())

		assert.ErrorIs(t, err, shared.ErrProductNotFound)
	})
}

func TestInventoryService_GetStockOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("should aggregate remaining stock per product", func(t *testing.T) {
		f := newFixture(t)
		productA := f.addProduct(0)
		productB := f.addProduct(0)
		soonest := daysFromNow(10)
		f.addBatch(t, productA, 5, daysFromNow(60))
		f.addBatch(t, productA, 3, soonest)
		f.addBatch(t, productB, 7, daysFromNow(30))

		disposed := f.addBatch(t, productA, 99, daysFromNow(45))
		_, err := f.service.DisposeBatch(ctx, DisposeBatchRequest{BatchID: disposed, Reason: "recall"})
		require.NoError(t, err)

		overview, err := f.service.GetStockOverview(ctx)

		require.NoError(t, err)
		require.Len(t, overview, 2)

		byProduct := make(map[uuid.UUID]StockOverviewItem)
		for _, item := range overview {
			byProduct[item.ProductID] = item
		}
		// batch expiry dates are stored truncated to the day
		y, m, d := soonest.UTC().Date()
		wantExpiry := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		assert.Equal(t, int64(8), byProduct[productA].TotalStock)
		assert.Equal(t, 2, byProduct[productA].BatchCount)
		assert.True(t, byProduct[productA].NextExpiry.Equal(wantExpiry))
		assert.Equal(t, int64(7), byProduct[productB].TotalStock)
		assert.Equal(t, 1, byProduct[productB].BatchCount)
	})

	t.Run("should return an empty overview with no stock", func(t *testing.T) {
		f := newFixture(t)

		overview, err := f.service.GetStockOverview(ctx)

		require.NoError(t, err)
		assert.Empty(t, overview)
	})
}

func TestInventoryService_GetAlerts(t *testing.T) {
	ctx := context.Background()

	t.Run("should report low stock and near expiry signals", func(t *testing.T) {
		f := newFixture(t)
		productID := f.addProduct(10)
		nearExpiry := f.addBatch(t, productID, 4, daysFromNow(3))

		alerts, err := f.service.GetAlerts(ctx, productID, time.Now(), 7)

		require.NoError(t, err)
		assert.True(t, alerts.LowStock)
		assert.Equal(t, int64(4), alerts.TotalStock)
		assert.Equal(t, []uuid.UUID{nearExpiry}, alerts.NearExpiry)
	})

	t.Run("should return only signalling products across the catalog", func(t *testing.T) {
		f := newFixture(t)
		low := f.addProduct(10)
		healthy := f.addProduct(1)
		f.addBatch(t, low, 2, daysFromNow(60))
		f.addBatch(t, healthy, 50, daysFromNow(60))

		alerts, err := f.service.GetAllAlerts(ctx, time.Now(), 7)

		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, low, alerts[0].ProductID)
		assert.True(t, alerts[0].LowStock)
	})
}
