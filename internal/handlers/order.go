package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/fulfillment"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/models"
)

type Fulfiller interface {
	FulfillOrder(ctx context.Context, req models.FulfillmentRequest) (*models.FulfillmentResult, error)
}

type OrderReader interface {
	GetByNumber(ctx context.Context, orderNumber int64) (*models.Order, error)
	GetReceipt(ctx context.Context, orderNumber int64) (*models.Receipt, error)
}

// createOrderRequest is the wire form of a fulfillment request. The IDs are
// pointers so binding rejects a missing field but accepts 0.
type createOrderRequest struct {
	CustomerNumber  *int                   `json:"customer_number" binding:"required"`
	BranchCode      *int                   `json:"branch_code" binding:"required"`
	OrderStatusID   *int                   `json:"order_status_id" binding:"required"`
	PaymentMethodID *int                   `json:"payment_method_id" binding:"required"`
	Items           []models.RequestedLine `json:"items" binding:"required,min=1"`
}

func (r createOrderRequest) toRequest() models.FulfillmentRequest {
	return models.FulfillmentRequest{
		CustomerNumber:  *r.CustomerNumber,
		BranchCode:      *r.BranchCode,
		OrderStatusID:   *r.OrderStatusID,
		PaymentMethodID: *r.PaymentMethodID,
		Items:           r.Items,
	}
}

type OrderHandler struct {
	service Fulfiller
	orders  OrderReader
	logger  *zap.Logger
}

func NewOrderHandler(service Fulfiller, orders OrderReader, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		orders:  orders,
		logger:  logger,
	}
}

// Register mounts the order routes on router
func (h *OrderHandler) Register(router gin.IRouter) {
	router.GET("/health", h.HealthCheck)
	router.POST("/api/meal_order_transaction", h.CreateOrder)
	router.POST("/orders", h.CreateOrder)
	router.GET("/orders/:number", h.GetOrder)
	router.GET("/orders/:number/receipt", h.GetReceipt)
}

// HealthCheck returns server status
func (h *OrderHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "order-service"})
}

// CreateOrder fulfills a stock-checked order. Every processed outcome,
// including one where nothing could be fulfilled, is a 200.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var body createOrderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req := body.toRequest()

	result, err := h.service.FulfillOrder(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("❌ Order fulfillment failed",
			zap.Int("customer_number", req.CustomerNumber),
			zap.Bool("transactional", errors.Is(err, fulfillment.ErrFulfillmentFailed)),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process order"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder returns a single order with lines and payment
func (h *OrderHandler) GetOrder(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}

	order, err := h.orders.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.logger.Error("❌ Failed to load order", zap.Int64("order_number", number), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load order"})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetReceipt returns the receipt of a committed order
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	number, ok := orderNumberParam(c)
	if !ok {
		return
	}

	receipt, err := h.orders.GetReceipt(c.Request.Context(), number)
	if err != nil {
		h.logger.Error("❌ Failed to load receipt", zap.Int64("order_number", number), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load receipt"})
		return
	}
	if receipt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func orderNumberParam(c *gin.Context) (int64, bool) {
	number, err := strconv.ParseInt(c.Param("number"), 10, 64)
	if err != nil || number <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order number"})
		return 0, false
	}
	return number, true
}
