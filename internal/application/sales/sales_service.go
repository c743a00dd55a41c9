package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockadoodle/backend/internal/domain/catalog"
	"github.com/stockadoodle/backend/internal/domain/inventory"
	"github.com/stockadoodle/backend/internal/domain/sales"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultMaxCommitAttempts bounds the internal retry on commit-time
	// conflicts; all other failures surface immediately.
	DefaultMaxCommitAttempts = 3
)

// Config holds the sale-posting policies
type Config struct {
	// QuotaMeasure selects what counts toward the daily quota
	QuotaMeasure sales.QuotaMeasure
	// DefaultDailyQuota seeds the metrics record created on a retailer's first sale
	DefaultDailyQuota decimal.Decimal
	// ExpiryWindowDays is the near-expiry horizon for receipt alerts
	ExpiryWindowDays int
	// MaxCommitAttempts bounds the conflict retry loop
	MaxCommitAttempts int
	// LeaderboardSize is the default entry count for leaderboard reads
	LeaderboardSize int
}

// LeaderboardCache is a best-effort cache of the retailer leaderboard.
// Failures are logged and ignored; the metrics store stays authoritative.
type LeaderboardCache interface {
	// Top returns up to limit entries, ranked best first
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	// Update records a retailer's current standing
	Update(ctx context.Context, retailerID uuid.UUID, streak int, totalSales decimal.Decimal) error
	// Invalidate drops cached standings after a bulk rewrite
	Invalidate(ctx context.Context) error
}

// SalesService posts sales atomically: FEFO allocation, the ledger append
// and the retailer metrics update commit together or not at all.
type SalesService struct {
	txScope     TransactionScope
	batchRepo   inventory.StockBatchRepository
	ledger      sales.SaleLedger
	metricsRepo sales.RetailerMetricsRepository
	productRepo catalog.ProductRepository
	retailers   sales.RetailerDirectory
	leaderboard LeaderboardCache
	cfg         Config
	logger      *zap.Logger
}

// NewSalesService creates a new SalesService
func NewSalesService(
	txScope TransactionScope,
	batchRepo inventory.StockBatchRepository,
	ledger sales.SaleLedger,
	metricsRepo sales.RetailerMetricsRepository,
	productRepo catalog.ProductRepository,
	retailers sales.RetailerDirectory,
	cfg Config,
	logger *zap.Logger,
) *SalesService {
	if !cfg.QuotaMeasure.IsValid() {
		cfg.QuotaMeasure = sales.QuotaMeasureAmount
	}
	if cfg.MaxCommitAttempts <= 0 {
		cfg.MaxCommitAttempts = DefaultMaxCommitAttempts
	}
	if cfg.ExpiryWindowDays <= 0 {
		cfg.ExpiryWindowDays = 7
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesService{
		txScope:     txScope,
		batchRepo:   batchRepo,
		ledger:      ledger,
		metricsRepo: metricsRepo,
		productRepo: productRepo,
		retailers:   retailers,
		cfg:         cfg,
		logger:      logger,
	}
}

// SetLeaderboardCache attaches an optional leaderboard cache
func (s *SalesService) SetLeaderboardCache(cache LeaderboardCache) {
	s.leaderboard = cache
}

// PostSale processes one sale as an atomic unit of work.
//
// Validation happens before any storage write; the dry-run FEFO plans for
// every line happen inside the transaction against current batch state, and
// the guarded decrements re-check that state at commit. A commit-time
// conflict re-runs the plan against fresh state up to MaxCommitAttempts
// before surfacing CONCURRENT_UPDATE_CONFLICT.
func (s *SalesService) PostSale(ctx context.Context, req PostSaleRequest) (*SaleReceipt, error) {
	products, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	var (
		sale    *sales.Sale
		metrics *sales.RetailerMetrics
	)

	for attempt := 1; ; attempt++ {
		sale, metrics, err = s.commitOnce(ctx, req)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, err
		}
		if attempt >= s.cfg.MaxCommitAttempts {
			s.logger.Warn("sale commit conflict retries exhausted",
				zap.String("retailer_id", req.RetailerID.String()),
				zap.Int("attempts", attempt))
			return nil, shared.ErrConcurrencyConflict
		}
		s.logger.Debug("sale commit conflict, replanning",
			zap.String("retailer_id", req.RetailerID.String()),
			zap.Int("attempt", attempt))
	}

	receipt := &SaleReceipt{
		SaleID:      sale.ID,
		RetailerID:  sale.RetailerID,
		SoldAt:      sale.SoldAt,
		Lines:       toReceiptLines(sale),
		TotalAmount: sale.TotalAmount,
		Metrics:     toMetricsResponse(metrics),
		Alerts:      s.evaluateAlerts(ctx, sale, products),
	}

	s.refreshLeaderboard(ctx, metrics)

	s.logger.Info("sale committed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("retailer_id", sale.RetailerID.String()),
		zap.Int("lines", len(sale.Lines)),
		zap.String("total", sale.TotalAmount.String()))

	return receipt, nil
}

// validateRequest checks every line structurally and resolves the products
// before anything touches storage. The whole request is rejected on the
// first invalid line.
func (s *SalesService) validateRequest(ctx context.Context, req PostSaleRequest) (map[uuid.UUID]catalog.Product, error) {
	if req.RetailerID == uuid.Nil {
		return nil, shared.ErrRetailerNotFound
	}
	exists, err := s.retailers.Exists(ctx, req.RetailerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrRetailerNotFound
	}

	if len(req.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_LINE", "Sale must contain at least one line")
	}

	ids := make([]uuid.UUID, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_LINE", "Line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_LINE", "Unit price cannot be negative")
		}
		ids = append(ids, line.ProductID)
	}

	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]catalog.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	for _, line := range req.Lines {
		if _, ok := products[line.ProductID]; !ok {
			return nil, shared.NewDomainError("INVALID_LINE", "Unknown product: "+line.ProductID.String())
		}
	}
	return products, nil
}

// commitOnce runs one allocate-then-commit attempt inside a transaction.
// A CONCURRENT_UPDATE_CONFLICT from a guarded decrement aborts the
// transaction so the caller can replan against fresh state.
func (s *SalesService) commitOnce(ctx context.Context, req PostSaleRequest) (*sales.Sale, *sales.RetailerMetrics, error) {
	var (
		committedSale    *sales.Sale
		committedMetrics *sales.RetailerMetrics
	)

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		now := time.Now()

		// dry-run pass: plan every line before mutating anything. Earlier
		// lines' planned draws are subtracted from the snapshot so a later
		// line for the same product sees the remainder; a request that
		// exceeds total stock fails here as INSUFFICIENT_STOCK rather than
		// at the guarded decrements.
		planned := make(map[uuid.UUID]int64)
		plans := make([]*inventory.AllocationPlan, 0, len(req.Lines))
		saleLines := make([]sales.SaleLine, 0, len(req.Lines))
		for _, line := range req.Lines {
			batches, err := repos.BatchRepo().FindAllocatable(ctx, line.ProductID)
			if err != nil {
				return err
			}
			for i := range batches {
				if drawn := planned[batches[i].ID]; drawn > 0 {
					batches[i].QuantityRemaining -= drawn
				}
			}
			plan, err := inventory.PlanFEFO(line.ProductID, line.Quantity, batches)
			if err != nil {
				return err
			}
			plans = append(plans, plan)

			allocations := make([]sales.BatchAllocation, 0, len(plan.Draws))
			for _, d := range plan.Draws {
				planned[d.BatchID] += d.QuantityDrawn
				allocations = append(allocations, sales.BatchAllocation{
					BatchID:       d.BatchID,
					QuantityDrawn: d.QuantityDrawn,
				})
			}
			saleLines = append(saleLines, sales.SaleLine{
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Allocations: allocations,
			})
		}

		// commit pass: guarded decrements detect stale plans
		for _, plan := range plans {
			for _, d := range plan.Draws {
				if err := repos.BatchRepo().ApplyDraw(ctx, d.BatchID, d.QuantityDrawn); err != nil {
					return err
				}
			}
		}

		sale, err := sales.NewSale(req.RetailerID, now, saleLines)
		if err != nil {
			return err
		}
		if err := repos.LedgerRepo().Append(ctx, sale); err != nil {
			return err
		}

		metrics, err := repos.MetricsRepo().FindByRetailer(ctx, req.RetailerID)
		if errors.Is(err, shared.ErrNotFound) {
			metrics, err = sales.NewRetailerMetrics(req.RetailerID, s.cfg.DefaultDailyQuota)
		}
		if err != nil {
			return err
		}
		metrics.ApplySale(s.cfg.QuotaMeasure.Of(sale), sale.TotalAmount, sale.SoldAt)
		if err := repos.MetricsRepo().Save(ctx, metrics); err != nil {
			return err
		}

		committedSale = sale
		committedMetrics = metrics
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return committedSale, committedMetrics, nil
}

// evaluateAlerts runs the alert evaluator over every product the sale drew
// from, using post-commit batch state. Only products with an active signal
// are attached to the receipt.
func (s *SalesService) evaluateAlerts(ctx context.Context, sale *sales.Sale, products map[uuid.UUID]catalog.Product) []inventory.ProductAlerts {
	seen := make(map[uuid.UUID]struct{}, len(sale.Lines))
	var alerts []inventory.ProductAlerts

	for _, line := range sale.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}

		batches, err := s.batchRepo.FindByProduct(ctx, line.ProductID)
		if err != nil {
			s.logger.Warn("alert evaluation skipped",
				zap.String("product_id", line.ProductID.String()), zap.Error(err))
			continue
		}
		product := products[line.ProductID]
		a := inventory.EvaluateAlerts(line.ProductID, batches, product.LowStockThreshold, sale.SoldAt, s.cfg.ExpiryWindowDays)
		if a.LowStock || len(a.NearExpiry) > 0 {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// refreshLeaderboard pushes the retailer's new standing into the cache.
// Best effort: a cache failure never fails the sale.
func (s *SalesService) refreshLeaderboard(ctx context.Context, metrics *sales.RetailerMetrics) {
	if s.leaderboard == nil {
		return
	}
	if err := s.leaderboard.Update(ctx, metrics.RetailerID, metrics.CurrentStreak, metrics.TotalSales); err != nil {
		s.logger.Warn("leaderboard cache update failed",
			zap.String("retailer_id", metrics.RetailerID.String()), zap.Error(err))
	}
}

// GetRetailerMetrics returns a retailer's current metrics. A retailer who
// has not sold yet gets a zero-valued view with the default quota.
func (s *SalesService) GetRetailerMetrics(ctx context.Context, retailerID uuid.UUID) (*RetailerMetricsResponse, error) {
	exists, err := s.retailers.Exists(ctx, retailerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrRetailerNotFound
	}

	metrics, err := s.metricsRepo.FindByRetailer(ctx, retailerID)
	if errors.Is(err, shared.ErrNotFound) {
		metrics, err = sales.NewRetailerMetrics(retailerID, s.cfg.DefaultDailyQuota)
	}
	if err != nil {
		return nil, err
	}
	resp := toMetricsResponse(metrics)
	return &resp, nil
}

// GetSale returns one committed sale as a receipt-shaped view, without
// re-evaluating alerts or metrics.
func (s *SalesService) GetSale(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.ledger.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	resp := toSaleResponse(sale)
	return &resp, nil
}

// ListRetailerSales returns a retailer's sales, newest first
func (s *SalesService) ListRetailerSales(ctx context.Context, retailerID uuid.UUID, filter shared.Filter) ([]SaleResponse, error) {
	exists, err := s.retailers.Exists(ctx, retailerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrRetailerNotFound
	}

	found, err := s.ledger.FindByRetailer(ctx, retailerID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SaleResponse, 0, len(found))
	for i := range found {
		out = append(out, toSaleResponse(&found[i]))
	}
	return out, nil
}

// ListSalesByDateRange returns sales committed within [start, end) across
// all retailers, newest first
func (s *SalesService) ListSalesByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]SaleResponse, error) {
	if !end.After(start) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Date range end must fall after its start")
	}

	found, err := s.ledger.FindByDateRange(ctx, start, end, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SaleResponse, 0, len(found))
	for i := range found {
		out = append(out, toSaleResponse(&found[i]))
	}
	return out, nil
}

// UpdateRetailerQuota changes a retailer's daily quota target
func (s *SalesService) UpdateRetailerQuota(ctx context.Context, retailerID uuid.UUID, quota decimal.Decimal) (*RetailerMetricsResponse, error) {
	exists, err := s.retailers.Exists(ctx, retailerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrRetailerNotFound
	}

	var resp RetailerMetricsResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		metrics, err := repos.MetricsRepo().FindByRetailer(ctx, retailerID)
		if errors.Is(err, shared.ErrNotFound) {
			metrics, err = sales.NewRetailerMetrics(retailerID, s.cfg.DefaultDailyQuota)
		}
		if err != nil {
			return err
		}
		if err := metrics.SetQuota(quota); err != nil {
			return err
		}
		if err := repos.MetricsRepo().Save(ctx, metrics); err != nil {
			return err
		}
		resp = toMetricsResponse(metrics)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunDailyRollover applies the day-boundary check to every retailer:
// stale progress is cleared and broken streaks reset. The core never runs
// this on a timer; an external trigger invokes it.
func (s *SalesService) RunDailyRollover(ctx context.Context, asOf time.Time) (int, error) {
	updated := 0
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		all, err := repos.MetricsRepo().FindAll(ctx)
		if err != nil {
			return err
		}
		for i := range all {
			m := all[i]
			before := m.CurrentStreak
			progressBefore := m.QuotaProgress
			m.Rollover(asOf)
			if m.CurrentStreak == before && m.QuotaProgress.Equal(progressBefore) {
				continue
			}
			if err := repos.MetricsRepo().Save(ctx, &m); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if s.leaderboard != nil && updated > 0 {
		if err := s.leaderboard.Invalidate(ctx); err != nil {
			s.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("daily rollover complete",
		zap.Time("as_of", asOf), zap.Int("updated", updated))
	return updated, nil
}

// Leaderboard returns the top retailers by streak, then lifetime sales.
// Served from the cache when warm, falling back to the metrics store.
func (s *SalesService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = s.cfg.LeaderboardSize
	}

	if s.leaderboard != nil {
		entries, err := s.leaderboard.Top(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	top, err := s.metricsRepo.FindTop(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(top))
	for i, m := range top {
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			RetailerID:    m.RetailerID,
			CurrentStreak: m.CurrentStreak,
			TotalSales:    m.TotalSales,
		})
	}
	return entries, nil
}
