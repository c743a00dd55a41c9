package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/catalog"
	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InventoryService manages the batch ledger outside the sale path: goods
// receipt, disposal, the expiry sweep and stock/alert queries.
type InventoryService struct {
	batchRepo   inventory.StockBatchRepository
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(batchRepo inventory.StockBatchRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		batchRepo:   batchRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// ReceiveBatch records a goods receipt as a new batch. The full quantity
// starts as remaining.
func (s *InventoryService) ReceiveBatch(ctx context.Context, req ReceiveBatchRequest) (*BatchResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	received := req.ReceivedDate
	if received.IsZero() {
		received = time.Now()
	}
	batch, err := inventory.NewStockBatch(req.ProductID, req.Quantity, req.ExpiryDate, received)
	if err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("batch received",
		zap.String("batch_id", batch.ID.String()),
		zap.String("product_id", batch.ProductID.String()),
		zap.Int64("quantity", batch.QuantityReceived),
		zap.Time("expiry_date", batch.ExpiryDate))

	resp := toBatchResponse(batch)
	return &resp, nil
}

// DisposeBatch removes a batch from circulation. Disposal is permanent and
// a second attempt fails with ALREADY_DISPOSED.
func (s *InventoryService) DisposeBatch(ctx context.Context, req DisposeBatchRequest) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, req.BatchID)
	if err != nil {
		return nil, err
	}
	if err := batch.Dispose(req.Reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("batch disposed",
		zap.String("batch_id", batch.ID.String()),
		zap.String("reason", batch.DisposalReason),
		zap.Int64("units_removed", batch.QuantityRemaining))

	resp := toBatchResponse(batch)
	return &resp, nil
}

// SweepExpired disposes every non-disposed batch whose expiry date has
// passed as of the given time. Running the sweep twice for the same day is
// safe: the second run finds nothing left to dispose.
func (s *InventoryService) SweepExpired(ctx context.Context, asOf time.Time) (*SweepResult, error) {
	expired, err := s.batchRepo.FindExpired(ctx, asOf)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{}
	for i := range expired {
		batch := expired[i]
		if err := batch.Dispose("expired", asOf); err != nil {
			// a concurrent disposal between the query and the write
			continue
		}
		if err := s.batchRepo.Save(ctx, &batch); err != nil {
			return result, err
		}
		result.Disposed++
		result.UnitsRemoved += batch.QuantityRemaining
		result.DisposedIDs = append(result.DisposedIDs, batch.ID)
	}

	s.logger.Info("expiry sweep complete",
		zap.Time("as_of", asOf),
		zap.Int("disposed", result.Disposed),
		zap.Int64("units_removed", result.UnitsRemoved))
	return result, nil
}

// GetStock returns a product's allocatable batches in FEFO order with the
// total remaining quantity.
func (s *InventoryService) GetStock(ctx context.Context, productID uuid.UUID) (*StockLevelResponse, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindAllocatable(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &StockLevelResponse{
		ProductID: productID,
		Batches:   make([]BatchResponse, 0, len(batches)),
	}
	for i := range batches {
		resp.TotalStock += batches[i].QuantityRemaining
		resp.Batches = append(resp.Batches, toBatchResponse(&batches[i]))
	}
	return resp, nil
}

// GetStockOverview summarizes allocatable stock across every product:
// total remaining units, batch count and the soonest expiry per product.
func (s *InventoryService) GetStockOverview(ctx context.Context) ([]StockOverviewItem, error) {
	batches, err := s.batchRepo.FindWithStock(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]int)
	out := make([]StockOverviewItem, 0)
	for i := range batches {
		b := &batches[i]
		pos, seen := index[b.ProductID]
		if !seen {
			index[b.ProductID] = len(out)
			out = append(out, StockOverviewItem{
				ProductID:  b.ProductID,
				NextExpiry: b.ExpiryDate,
			})
			pos = len(out) - 1
		}
		out[pos].TotalStock += b.QuantityRemaining
		out[pos].BatchCount++
		if b.ExpiryDate.Before(out[pos].NextExpiry) {
			out[pos].NextExpiry = b.ExpiryDate
		}
	}
	return out, nil
}

// GetBatch returns one batch by ID, disposed or not
func (s *InventoryService) GetBatch(ctx context.Context, batchID uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	resp := toBatchResponse(batch)
	return &resp, nil
}

// GetAlerts evaluates the stock alerts for one product as of the given time
func (s *InventoryService) GetAlerts(ctx context.Context, productID uuid.UUID, asOf time.Time, expiryWindowDays int) (*inventory.ProductAlerts, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	batches, err := s.batchRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	alerts := inventory.EvaluateAlerts(productID, batches, product.LowStockThreshold, asOf, expiryWindowDays)
	return &alerts, nil
}

// GetAllAlerts evaluates the stock alerts for every active product and
// returns only the products with an active signal.
func (s *InventoryService) GetAllAlerts(ctx context.Context, asOf time.Time, expiryWindowDays int) ([]inventory.ProductAlerts, error) {
	products, err := s.productRepo.FindActive(ctx, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}

	var out []inventory.ProductAlerts
	for _, p := range products {
		batches, err := s.batchRepo.FindByProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		a := inventory.EvaluateAlerts(p.ID, batches, p.LowStockThreshold, asOf, expiryWindowDays)
		if a.LowStock || len(a.NearExpiry) > 0 {
			out = append(out, a)
		}
	}
	return out, nil
}
