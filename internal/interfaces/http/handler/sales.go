package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	salesapp "github.com/stockadoodle/backend/internal/application/sales"
	"github.com/stockadoodle/backend/internal/interfaces/http/dto"
	"github.com/stockadoodle/backend/internal/interfaces/http/middleware"
)

// SalesHandler handles sale posting and gamification endpoints
type SalesHandler struct {
	BaseHandler
	salesService *salesapp.SalesService
}

// NewSalesHandler creates a new SalesHandler
func NewSalesHandler(salesService *salesapp.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

// PostSaleRequest is the request body for posting a sale
type PostSaleRequest struct {
	RetailerID string            `json:"retailer_id" binding:"required,uuid"`
	Lines      []PostSaleLineDTO `json:"lines" binding:"required,min=1,dive"`
}

// PostSaleLineDTO is one line of a sale request
type PostSaleLineDTO struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	UnitPrice string `json:"unit_price" binding:"required"`
}

// UpdateQuotaRequest is the request body for changing a retailer's quota
type UpdateQuotaRequest struct {
	DailyQuota string `json:"daily_quota" binding:"required"`
}

// PostSale handles POST /api/v1/sales
func (h *SalesHandler) PostSale(c *gin.Context) {
	var req PostSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	retailerID, err := uuid.Parse(req.RetailerID)
	if err != nil {
		h.BadRequest(c, "Invalid retailer ID")
		return
	}

	lines := make([]salesapp.SaleLineRequest, 0, len(req.Lines))
	for _, l := range req.Lines {
		productID, err := uuid.Parse(l.ProductID)
		if err != nil {
			h.BadRequest(c, "Invalid product ID: "+l.ProductID)
			return
		}
		unitPrice, err := decimal.NewFromString(l.UnitPrice)
		if err != nil {
			h.BadRequest(c, "Invalid unit price: "+l.UnitPrice)
			return
		}
		lines = append(lines, salesapp.SaleLineRequest{
			ProductID: productID,
			Quantity:  l.Quantity,
			UnitPrice: unitPrice,
		})
	}

	receipt, err := h.salesService.PostSale(c.Request.Context(), salesapp.PostSaleRequest{
		RetailerID: retailerID,
		Lines:      lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, receipt)
}

// GetSale handles GET /api/v1/sales/:id
func (h *SalesHandler) GetSale(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.salesService.GetSale(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// ListRetailerSales handles GET /api/v1/retailers/:id/sales
func (h *SalesHandler) ListRetailerSales(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid retailer ID")
		return
	}
	var list dto.ListRequest
	if err := c.ShouldBindQuery(&list); err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	sales, err := h.salesService.ListRetailerSales(c.Request.Context(), uuid.MustParse(uri.ID), list.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sales)
}

// ListSalesRequest is the query for the date-ranged sales listing.
// Dates are calendar days; the range covers from midnight to the end of
// the "to" day.
type ListSalesRequest struct {
	From string `form:"from" binding:"required,datetime=2006-01-02"`
	To   string `form:"to" binding:"required,datetime=2006-01-02"`
	dto.ListRequest
}

// ListSales handles GET /api/v1/sales
func (h *SalesHandler) ListSales(c *gin.Context) {
	var req ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	from, _ := time.ParseInLocation("2006-01-02", req.From, time.UTC)
	to, _ := time.ParseInLocation("2006-01-02", req.To, time.UTC)

	sales, err := h.salesService.ListSalesByDateRange(c.Request.Context(), from, to.AddDate(0, 0, 1), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sales)
}

// GetRetailerMetrics handles GET /api/v1/retailers/:id/metrics
func (h *SalesHandler) GetRetailerMetrics(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid retailer ID")
		return
	}
	retailerID := uuid.MustParse(req.ID)

	metrics, err := h.salesService.GetRetailerMetrics(c.Request.Context(), retailerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, metrics)
}

// UpdateRetailerQuota handles PUT /api/v1/retailers/:id/quota
func (h *SalesHandler) UpdateRetailerQuota(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid retailer ID")
		return
	}
	var req UpdateQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	quota, err := decimal.NewFromString(req.DailyQuota)
	if err != nil {
		h.BadRequest(c, "Invalid daily quota: "+req.DailyQuota)
		return
	}

	metrics, err := h.salesService.UpdateRetailerQuota(c.Request.Context(), uuid.MustParse(uri.ID), quota)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, metrics)
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *SalesHandler) Leaderboard(c *gin.Context) {
	var query struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid limit")
		return
	}

	entries, err := h.salesService.Leaderboard(c.Request.Context(), query.Limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entries)
}

// RunDailyRollover handles POST /api/v1/admin/rollover
func (h *SalesHandler) RunDailyRollover(c *gin.Context) {
	updated, err := h.salesService.RunDailyRollover(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"updated": updated})
}
