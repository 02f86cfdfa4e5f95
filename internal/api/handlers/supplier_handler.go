// server/internal/api/handlers/supplier_handler.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/serialize"
)

type SupplierHandler struct {
	Base
	Store *database.Store
}

type CreateSupplierRequest struct {
	Name           string   `json:"name" binding:"required"`
	Phone          string   `json:"phone" binding:"required"`
	Location       string   `json:"location" binding:"required"`
	FruitsSupplied []string `json:"fruitsSupplied" binding:"required"`
	Active         *bool    `json:"active"`
}

type UpdateSupplierRequest struct {
	Name           *string   `json:"name"`
	Phone          *string   `json:"phone"`
	Location       *string   `json:"location"`
	FruitsSupplied *[]string `json:"fruitsSupplied"`
	Active         *bool     `json:"active"`
}

type supplierQuery struct {
	PageQuery
	ActiveOnly bool `form:"active_only"`
}

// ListSuppliers returns a page of suppliers.
func (h *SupplierHandler) ListSuppliers(c *gin.Context) {
	var q supplierQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.clamp()

	filter := bson.M{}
	if q.ActiveOnly {
		filter["active"] = true
	}

	suppliers, err := h.Store.Suppliers.Find(c.Request.Context(), filter, q.Skip, q.Limit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "list suppliers"))
		return
	}
	total, err := h.Store.Suppliers.Count(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "count suppliers"))
		return
	}
	docs, err := serialize.Structs(suppliers)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize suppliers"))
		return
	}

	respondList(c, docs, newPagination(q.PageQuery, total))
}

// GetSupplier returns one supplier by system id.
func (h *SupplierHandler) GetSupplier(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	supplier, err := h.Store.Suppliers.FindOne(c.Request.Context(), database.ByID(oid))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.fail(c, apperr.NotFoundf("Supplier not found"))
			return
		}
		h.fail(c, apperr.Wrap(err, "find supplier"))
		return
	}

	doc, err := serialize.Struct(supplier)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize supplier"))
		return
	}
	respondOK(c, doc)
}

// CreateSupplier stores a new supplier. Suppliers are active unless the
// request says otherwise.
func (h *SupplierHandler) CreateSupplier(c *gin.Context) {
	var req CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	supplier := models.Supplier{
		Name:           req.Name,
		Phone:          req.Phone,
		Location:       req.Location,
		FruitsSupplied: req.FruitsSupplied,
		Active:         req.Active == nil || *req.Active,
	}
	id, err := h.Store.Suppliers.InsertOne(c.Request.Context(), &supplier)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "create supplier"))
		return
	}

	respondCreated(c, gin.H{
		"message":     "Supplier created successfully",
		"supplier_id": id.Hex(),
	})
}

// UpdateSupplier sets the provided fields only.
func (h *SupplierHandler) UpdateSupplier(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req UpdateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}

	set := bson.M{}
	setIf(set, "name", req.Name)
	setIf(set, "phone", req.Phone)
	setIf(set, "location", req.Location)
	setIf(set, "fruitsSupplied", req.FruitsSupplied)
	setIf(set, "active", req.Active)
	if len(set) == 0 {
		h.fail(c, apperr.InvalidInputf("No update data provided"))
		return
	}

	matched, err := h.Store.Suppliers.UpdateOne(c.Request.Context(), database.ByID(oid), set)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update supplier"))
		return
	}
	if matched == 0 {
		h.fail(c, apperr.NotFoundf("Supplier not found"))
		return
	}
	respondMessage(c, "Supplier updated successfully")
}

// DeleteSupplier removes a supplier. Its fruits keep the dangling reference.
func (h *SupplierHandler) DeleteSupplier(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	deleted, err := h.Store.Suppliers.DeleteOne(c.Request.Context(), database.ByID(oid))
	if err != nil {
		h.fail(c, apperr.Wrap(err, "delete supplier"))
		return
	}
	if deleted == 0 {
		h.fail(c, apperr.NotFoundf("Supplier not found"))
		return
	}
	respondMessage(c, "Supplier deleted successfully")
}
