package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/serialize"
)

type customerForm struct {
	CustomerID string `form:"customerId" binding:"required"`
	Name       string `form:"name" binding:"required"`
	Phone      string `form:"phone" binding:"required"`
	Address    string `form:"address" binding:"required"`
	IsMember   bool   `form:"isMember"`
}

func (f customerForm) fields() bson.M {
	return bson.M{
		"customerId": f.CustomerID,
		"name":       f.Name,
		"phone":      f.Phone,
		"address":    f.Address,
		"isMember":   f.IsMember,
		"updated_at": time.Now().UTC(),
	}
}

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.Store.Customers.Find(c.Request.Context(), bson.M{}, 0, listLimit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "list customers"))
		return
	}
	docs, err := serialize.Structs(customers)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize customers"))
		return
	}
	h.render(c, "customers/list", gin.H{"Customers": docs})
}

func (h *Handler) NewCustomer(c *gin.Context) {
	h.render(c, "customers/create", gin.H{})
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var form customerForm
	if !h.bindForm(c, &form) {
		return
	}

	customer := models.Customer{
		CustomerID: models.BusinessID(form.CustomerID),
		Name:       form.Name,
		Phone:      form.Phone,
		Address:    form.Address,
		IsMember:   form.IsMember,
		UpdatedAt:  time.Now().UTC(),
	}
	if _, err := h.Store.Customers.InsertOne(c.Request.Context(), &customer); err != nil {
		h.fail(c, apperr.Wrap(err, "create customer"))
		return
	}
	h.redirect(c, "/customers")
}

func (h *Handler) EditCustomer(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	customer, err := h.Store.Customers.FindOne(c.Request.Context(), database.ByID(oid))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.fail(c, apperr.NotFoundf("Customer not found"))
			return
		}
		h.fail(c, apperr.Wrap(err, "find customer"))
		return
	}
	doc, err := serialize.Struct(customer)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize customer"))
		return
	}
	h.render(c, "customers/edit", gin.H{"Customer": doc})
}

// UpdateCustomer overwrites every field from the form.
func (h *Handler) UpdateCustomer(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var form customerForm
	if !h.bindForm(c, &form) {
		return
	}

	matched, err := h.Store.Customers.UpdateOne(c.Request.Context(), database.ByID(oid), form.fields())
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update customer"))
		return
	}
	if matched == 0 {
		h.fail(c, apperr.NotFoundf("Customer not found"))
		return
	}
	h.redirect(c, "/customers")
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	deleted, err := h.Store.Customers.DeleteOne(c.Request.Context(), database.ByID(oid))
	if err != nil {
		h.fail(c, apperr.Wrap(err, "delete customer"))
		return
	}
	if deleted == 0 {
		h.fail(c, apperr.NotFoundf("Customer not found"))
		return
	}
	h.redirect(c, "/customers")
}
