package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mdclab/mdc-service/internal/adapters/http/dto"
	"github.com/mdclab/mdc-service/internal/app"
	"github.com/mdclab/mdc-service/internal/domain"
)

// OrderHandler handles order-related HTTP endpoints.
type OrderHandler struct {
	service *app.OrderService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service *app.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// OrderResponse is the HTTP response structure for an order.
type OrderResponse struct {
	ID       string  `json:"id"`
	Category string  `json:"category,omitempty"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
}

// toOrderResponse converts a domain Order to an HTTP response.
func toOrderResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:       o.ID,
		Category: o.Category,
		Price:    o.Price,
		Status:   o.Status,
	}
}

// AsyncOrderResponse reports a pooled task's outcome together with the
// request id the task observed from its execution context.
type AsyncOrderResponse struct {
	Message           string `json:"message"`
	ObservedRequestID string `json:"observedRequestId"`
}

// GetOrder handles GET /api/v1/orders/:id
// Processes the order synchronously; every step inherits the request's
// diagnostic context automatically.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.ProcessOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// GetOrderAsync handles GET /api/v1/orders/:id/async
// Delegates to the pool without propagation: the task observes an empty
// request id, which the response makes visible.
func (h *OrderHandler) GetOrderAsync(c *gin.Context) {
	ctx := c.Request.Context()

	future, err := h.service.ProcessOrderAsync(ctx, c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := future.Wait(ctx)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AsyncOrderResponse{
		Message:           result.Message,
		ObservedRequestID: result.ObservedRequestID,
	})
}

// GetOrderAsyncMDC handles GET /api/v1/orders/:id/async-mdc
// Delegates to the pool with propagation: the task observes the
// originating request id.
func (h *OrderHandler) GetOrderAsyncMDC(c *gin.Context) {
	ctx := c.Request.Context()

	future, err := h.service.ProcessOrderAsyncMDC(ctx, c.Param("id"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := future.Wait(ctx)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, AsyncOrderResponse{
		Message:           result.Message,
		ObservedRequestID: result.ObservedRequestID,
	})
}

// CreateOrder handles POST /api/v1/orders?category=C
// Adds orderId and productCategory to the diagnostic context for the
// duration of the creation sub-operation only.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		orderID = generateOrderID()
	}

	order, err := h.service.CreateOrder(c.Request.Context(), orderID, c.Query("category"))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// generateOrderID returns a fresh order identifier for requests that
// don't supply one.
func generateOrderID() string {
	return "ord-" + uuid.New().String()[:8]
}

// RegisterOrderRoutes registers order routes on the given router group.
func (h *OrderHandler) RegisterOrderRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.GET("/:id", h.GetOrder)
	orders.GET("/:id/async", h.GetOrderAsync)
	orders.GET("/:id/async-mdc", h.GetOrderAsyncMDC)
	orders.POST("", h.CreateOrder)
}
