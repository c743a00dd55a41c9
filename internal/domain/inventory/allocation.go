package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/shared"
)

// BatchDraw is one planned draw against a single batch
type BatchDraw struct {
	BatchID       uuid.UUID
	QuantityDrawn int64
	FullyConsumed bool // batch remaining reaches zero after this draw
}

// AllocationPlan is the dry-run result of a FEFO allocation. It is computed
// before any mutation is applied so that a failing line never leaves batches
// half-decremented.
type AllocationPlan struct {
	ProductID      uuid.UUID
	Requested      int64
	Draws          []BatchDraw
	TotalDrawn     int64
	TouchedBatches []uuid.UUID
}

// PlanFEFO computes a First-Expired-First-Out draw plan for the requested
// quantity over the given batches. Only non-disposed batches with remaining
// stock participate. Ordering is expiry date ascending, ties broken by
// received date ascending, then batch ID ascending so the plan is
// deterministic for identical snapshots.
//
// Fails with INSUFFICIENT_STOCK when the batches cannot cover the request;
// no batch is mutated either way.
func PlanFEFO(productID uuid.UUID, quantity int64, batches []StockBatch) (*AllocationPlan, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Requested quantity must be positive")
	}

	available := make([]StockBatch, 0, len(batches))
	for _, b := range batches {
		if b.ProductID == productID && b.HasStock() {
			available = append(available, b)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		if !available[i].ExpiryDate.Equal(available[j].ExpiryDate) {
			return available[i].ExpiryDate.Before(available[j].ExpiryDate)
		}
		if !available[i].ReceivedDate.Equal(available[j].ReceivedDate) {
			return available[i].ReceivedDate.Before(available[j].ReceivedDate)
		}
		return available[i].ID.String() < available[j].ID.String()
	})

	plan := &AllocationPlan{
		ProductID: productID,
		Requested: quantity,
		Draws:     make([]BatchDraw, 0, len(available)),
	}

	remaining := quantity
	for _, b := range available {
		if remaining == 0 {
			break
		}
		draw := min64(remaining, b.QuantityRemaining)
		plan.Draws = append(plan.Draws, BatchDraw{
			BatchID:       b.ID,
			QuantityDrawn: draw,
			FullyConsumed: draw == b.QuantityRemaining,
		})
		plan.TouchedBatches = append(plan.TouchedBatches, b.ID)
		plan.TotalDrawn += draw
		remaining -= draw
	}

	if remaining > 0 {
		return nil, shared.ErrInsufficientStock
	}
	return plan, nil
}

// ApplyPlan applies a previously computed plan to the given batch entities.
// Callers run this inside their transaction boundary; a mismatch between the
// plan and the batches means the snapshot went stale and the caller should
// re-plan.
func ApplyPlan(plan *AllocationPlan, batches []*StockBatch) error {
	if plan == nil {
		return shared.NewDomainError("INVALID_INPUT", "Allocation plan cannot be nil")
	}

	byID := make(map[uuid.UUID]*StockBatch, len(batches))
	for _, b := range batches {
		byID[b.ID] = b
	}

	for _, d := range plan.Draws {
		batch, ok := byID[d.BatchID]
		if !ok {
			return shared.ErrConcurrencyConflict
		}
		if err := batch.Draw(d.QuantityDrawn); err != nil {
			// the snapshot the plan was computed on is no longer current
			return shared.ErrConcurrencyConflict
		}
	}
	return nil
}

// AvailableQuantity sums remaining stock across non-disposed batches of a product
func AvailableQuantity(productID uuid.UUID, batches []StockBatch) int64 {
	var total int64
	for _, b := range batches {
		if b.ProductID == productID && b.HasStock() {
			total += b.QuantityRemaining
		}
	}
	return total
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
