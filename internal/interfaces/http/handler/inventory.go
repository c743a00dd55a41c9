package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/stockadoodle/backend/internal/application/inventory"
	"github.com/stockadoodle/backend/internal/interfaces/http/dto"
	"github.com/stockadoodle/backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock batch and alert endpoints
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
	expiryWindowDays int
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService, expiryWindowDays int) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		expiryWindowDays: expiryWindowDays,
	}
}

// ReceiveBatchRequest is the request body for receiving a batch
type ReceiveBatchRequest struct {
	ProductID    string `json:"product_id" binding:"required,uuid"`
	Quantity     int64  `json:"quantity" binding:"required,gt=0"`
	ExpiryDate   string `json:"expiry_date" binding:"required"`
	ReceivedDate string `json:"received_date,omitempty"`
}

// DisposeBatchRequest is the request body for disposing a batch
type DisposeBatchRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ReceiveBatch handles POST /api/v1/batches
func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	var req ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	expiryDate, err := time.Parse("2006-01-02", req.ExpiryDate)
	if err != nil {
		h.BadRequest(c, "Invalid expiry date format, expected YYYY-MM-DD")
		return
	}
	var receivedDate time.Time
	if req.ReceivedDate != "" {
		receivedDate, err = time.Parse("2006-01-02", req.ReceivedDate)
		if err != nil {
			h.BadRequest(c, "Invalid received date format, expected YYYY-MM-DD")
			return
		}
	}

	batch, err := h.inventoryService.ReceiveBatch(c.Request.Context(), inventoryapp.ReceiveBatchRequest{
		ProductID:    uuid.MustParse(req.ProductID),
		Quantity:     req.Quantity,
		ExpiryDate:   expiryDate,
		ReceivedDate: receivedDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, batch)
}

// GetBatch handles GET /api/v1/batches/:id
func (h *InventoryHandler) GetBatch(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}

	batch, err := h.inventoryService.GetBatch(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// DisposeBatch handles POST /api/v1/batches/:id/dispose
func (h *InventoryHandler) DisposeBatch(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid batch ID")
		return
	}
	var req DisposeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	batch, err := h.inventoryService.DisposeBatch(c.Request.Context(), inventoryapp.DisposeBatchRequest{
		BatchID: uuid.MustParse(uri.ID),
		Reason:  req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, batch)
}

// GetStock handles GET /api/v1/products/:id/stock
func (h *InventoryHandler) GetStock(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	stock, err := h.inventoryService.GetStock(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stock)
}

// GetStockOverview handles GET /api/v1/stock
func (h *InventoryHandler) GetStockOverview(c *gin.Context) {
	overview, err := h.inventoryService.GetStockOverview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, overview)
}

// GetProductAlerts handles GET /api/v1/products/:id/alerts
func (h *InventoryHandler) GetProductAlerts(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	alerts, err := h.inventoryService.GetAlerts(c.Request.Context(), uuid.MustParse(uri.ID), time.Now(), h.expiryWindowDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}

// GetAllAlerts handles GET /api/v1/alerts
func (h *InventoryHandler) GetAllAlerts(c *gin.Context) {
	alerts, err := h.inventoryService.GetAllAlerts(c.Request.Context(), time.Now(), h.expiryWindowDays)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, alerts)
}

// SweepExpired handles POST /api/v1/admin/sweep
func (h *InventoryHandler) SweepExpired(c *gin.Context) {
	result, err := h.inventoryService.SweepExpired(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
