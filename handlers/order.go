package handlers

import (
	"net/http"
	"strconv"

	"food-ordering-api/middleware"
	"food-ordering-api/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	svc        *services.OrderService
	production bool
}

func NewOrderHandler(svc *services.OrderService, production bool) *OrderHandler {
	return &OrderHandler{svc: svc, production: production}
}

// ListOrders returns the orders visible to the caller
func (h *OrderHandler) ListOrders(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var filter services.ListFilter
	var err error
	if filter.RestaurantID, err = optionalUintQuery(c, "restaurantId"); err != nil {
		badRequest(c, "Invalid restaurantId", nil)
		return
	}
	if filter.BranchManagerID, err = optionalUintQuery(c, "branchManagerId"); err != nil {
		badRequest(c, "Invalid branchManagerId", nil)
		return
	}

	orders, err := h.svc.List(c.Request.Context(), id, filter)
	if err != nil {
		respondError(c, err, h.production)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CreateOrder places an order and returns the payment intent secret
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	result, err := h.svc.Create(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, h.production)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateOrderStatus lets staff responsible for the order change its status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	var req services.UpdateStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, h.production)
		return
	}
	c.JSON(http.StatusOK, order)
}

// OrderHistory returns the status audit trail of one order
func (h *OrderHandler) OrderHistory(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		badRequest(c, "Invalid order id", nil)
		return
	}

	history, err := h.svc.History(c.Request.Context(), id, uint(orderID))
	if err != nil {
		respondError(c, err, h.production)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orderId": orderID, "count": len(history), "history": history})
}

func optionalUintQuery(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	u := uint(v)
	return &u, nil
}
