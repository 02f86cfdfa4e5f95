// server/internal/api/handlers/customer_handler.go
package handlers

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

type CustomerHandler struct {
	Base
	Store *database.Store
}

type CreateCustomerRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Address    string `json:"address" binding:"required"`
	IsMember   bool   `json:"isMember"`
}

type UpdateCustomerRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	IsMember *bool   `json:"isMember"`
}

type customerQuery struct {
	PageQuery
	IsMember *bool `form:"is_member"`
}

// ListCustomers returns a page of customers, optionally only members.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var q customerQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.clamp()

	filter := bson.M{}
	if q.IsMember != nil {
		filter["isMember"] = *q.IsMember
	}

	customers, err := h.Store.Customers.Find(c.Request.Context(), filter, q.Skip, q.Limit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "list customers"))
		return
	}
	total, err := h.Store.Customers.Count(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "count customers"))
		return
	}
	docs, err := serialize.Structs(customers)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize customers"))
		return
	}

	respondList(c, docs, newPagination(q.PageQuery, total))
}

// GetCustomer returns one customer by system id.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
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
	respondOK(c, doc)
}

// CreateCustomer stores a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer := models.Customer{
		CustomerID: models.BusinessID(req.CustomerID),
		Name:       req.Name,
		Phone:      req.Phone,
		Address:    req.Address,
		IsMember:   req.IsMember,
		UpdatedAt:  time.Now().UTC(),
	}
	id, err := h.Store.Customers.InsertOne(c.Request.Context(), &customer)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "create customer"))
		return
	}

	respondCreated(c, gin.H{
		"message":     "Customer created successfully",
		"customer_id": id.Hex(),
	})
}

// UpdateCustomer sets the provided fields only.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	set := bson.M{}
	setIf(set, "name", req.Name)
	setIf(set, "phone", req.Phone)
	setIf(set, "address", req.Address)
	setIf(set, "isMember", req.IsMember)
	if len(set) == 0 {
		h.fail(c, apperr.InvalidInputf("No update data provided"))
		return
	}
	set["updated_at"] = time.Now().UTC()

	matched, err := h.Store.Customers.UpdateOne(c.Request.Context(), database.ByID(oid), set)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update customer"))
		return
	}
	if matched == 0 {
		h.fail(c, apperr.NotFoundf("Customer not found"))
		return
	}
	respondMessage(c, "Customer updated successfully")
}

// DeleteCustomer removes a customer. Orders referencing it are kept.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
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
	respondMessage(c, "Customer deleted successfully")
}
