// server/internal/api/handlers/order_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/orders"
)

type OrderHandler struct {
	Base
	Service  *orders.Service
	Resolver *orders.Resolver
}

type OrderItemRequest struct {
	FruitID    string  `json:"fruitId" binding:"required"`
	QuantityKg float64 `json:"quantityKg" binding:"gt=0"`
}

type CreateOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"required"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Status     string             `json:"status"`
}

type UpdateOrderRequest struct {
	Status *string `json:"status"`
}

type orderQuery struct {
	PageQuery
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
}

// ListOrders returns a page of orders joined with customer and fruit names.
// Orders that cannot be read are reported under "problems".
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var q orderQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.clamp()

	filter := orders.Filter{Status: q.Status, CustomerID: q.CustomerID}
	listing, err := h.Resolver.List(c.Request.Context(), filter.BSON(), q.Skip, q.Limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	body := gin.H{
		"success":    true,
		"data":       listing.Orders,
		"pagination": newPagination(q.PageQuery, listing.Total),
	}
	if len(listing.Problems) > 0 {
		body["problems"] = listing.Problems
	}
	c.JSON(http.StatusOK, body)
}

// GetOrder returns one order with its item details.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	view, err := h.Resolver.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, view)
}

// CreateOrder prices and stores a new order.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	items := make([]orders.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, orders.ItemRequest{FruitID: it.FruitID, QuantityKg: it.QuantityKg})
	}
	res, err := h.Service.Create(c.Request.Context(), orders.CreateRequest{
		CustomerID: req.CustomerID,
		Items:      items,
		Status:     req.Status,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	respondCreated(c, gin.H{
		"message":      "Order created successfully",
		"order_id":     res.Order.ID.Hex(),
		"total_amount": res.Total.InexactFloat64(),
	})
}

// UpdateOrder changes the status of an order.
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req UpdateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.Status == nil {
		h.fail(c, apperr.InvalidInputf("No update data provided"))
		return
	}

	if err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), *req.Status); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, "Order updated successfully")
}

// DeleteOrder removes an order.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	respondMessage(c, "Order deleted successfully")
}
