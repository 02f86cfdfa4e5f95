package web

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/orders"
	"fruit-store-api-server/internal/serialize"
)

type orderForm struct {
	CustomerID string   `form:"customerId" binding:"required"`
	FruitID    string   `form:"fruitId" binding:"required"`
	QuantityKg *float64 `form:"quantityKg" binding:"required"`
	Status     string   `form:"status" binding:"required"`
}

type orderStatusForm struct {
	Status string `form:"status" binding:"required"`
}

// ListOrders renders resolved orders. A failed query renders an empty list
// with a notice rather than an error page.
func (h *Handler) ListOrders(c *gin.Context) {
	data := gin.H{"Orders": []orders.View{}}
	listing, err := h.Resolver.List(c.Request.Context(), bson.M{}, 0, listLimit)
	switch {
	case err != nil:
		h.Log.WithError(err).Error("Failed to list orders")
		data["Notice"] = "Orders could not be loaded."
	default:
		data["Orders"] = listing.Orders
		if n := len(listing.Problems); n > 0 {
			data["Notice"] = fmt.Sprintf("%d order(s) could not be displayed.", n)
		}
	}
	h.render(c, "orders/list", data)
}

// orderChoices feeds the customer and fruit select boxes.
func (h *Handler) orderChoices(ctx context.Context) (customers, fruits []serialize.Doc, err error) {
	cs, err := h.Store.Customers.Find(ctx, bson.M{}, 0, listLimit)
	if err != nil {
		return nil, nil, apperr.Wrap(err, "list customers")
	}
	fs, err := h.Store.Fruits.Find(ctx, bson.M{}, 0, listLimit)
	if err != nil {
		return nil, nil, apperr.Wrap(err, "list fruits")
	}
	if customers, err = serialize.Structs(cs); err != nil {
		return nil, nil, apperr.Wrap(err, "serialize customers")
	}
	if fruits, err = serialize.Structs(fs); err != nil {
		return nil, nil, apperr.Wrap(err, "serialize fruits")
	}
	return customers, fruits, nil
}

func (h *Handler) NewOrder(c *gin.Context) {
	customers, fruits, err := h.orderChoices(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, "orders/create", gin.H{"Customers": customers, "Fruits": fruits})
}

// CreateOrder places a single-item order.
func (h *Handler) CreateOrder(c *gin.Context) {
	var form orderForm
	if !h.bindForm(c, &form) {
		return
	}

	_, err := h.Orders.Create(c.Request.Context(), orders.CreateRequest{
		CustomerID: form.CustomerID,
		Items:      []orders.ItemRequest{{FruitID: form.FruitID, QuantityKg: *form.QuantityKg}},
		Status:     form.Status,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, "/orders")
}

func (h *Handler) EditOrder(c *gin.Context) {
	view, err := h.Resolver.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, "orders/edit", gin.H{"Order": view})
}

// UpdateOrder changes the status only.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var form orderStatusForm
	if !h.bindForm(c, &form) {
		return
	}
	if err := h.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), form.Status); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, "/orders")
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	h.redirect(c, "/orders")
}
