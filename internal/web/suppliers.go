package web

import (
	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/serialize"
)

type supplierForm struct {
	Name     string `form:"name" binding:"required"`
	Phone    string `form:"phone" binding:"required"`
	Location string `form:"location" binding:"required"`
	// FruitsSupplied is comma separated.
	FruitsSupplied string `form:"fruitsSupplied" binding:"required"`
	Active         bool   `form:"active"`
}

func (h *Handler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.Store.Suppliers.Find(c.Request.Context(), bson.M{}, 0, listLimit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "list suppliers"))
		return
	}
	docs, err := serialize.Structs(suppliers)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize suppliers"))
		return
	}
	h.render(c, "suppliers/list", gin.H{"Suppliers": docs})
}

func (h *Handler) NewSupplier(c *gin.Context) {
	h.render(c, "suppliers/create", gin.H{})
}

func (h *Handler) CreateSupplier(c *gin.Context) {
	var form supplierForm
	if !h.bindForm(c, &form) {
		return
	}

	supplier := models.Supplier{
		Name:           form.Name,
		Phone:          form.Phone,
		Location:       form.Location,
		FruitsSupplied: models.SplitFruitList(form.FruitsSupplied),
		Active:         form.Active,
	}
	if _, err := h.Store.Suppliers.InsertOne(c.Request.Context(), &supplier); err != nil {
		h.fail(c, apperr.Wrap(err, "create supplier"))
		return
	}
	h.redirect(c, "/suppliers")
}

func (h *Handler) EditSupplier(c *gin.Context) {
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
	h.render(c, "suppliers/edit", gin.H{"Supplier": doc})
}

// UpdateSupplier overwrites every field from the form.
func (h *Handler) UpdateSupplier(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var form supplierForm
	if !h.bindForm(c, &form) {
		return
	}

	matched, err := h.Store.Suppliers.UpdateOne(c.Request.Context(), database.ByID(oid), bson.M{
		"name":           form.Name,
		"phone":          form.Phone,
		"location":       form.Location,
		"fruitsSupplied": models.SplitFruitList(form.FruitsSupplied),
		"active":         form.Active,
	})
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update supplier"))
		return
	}
	if matched == 0 {
		h.fail(c, apperr.NotFoundf("Supplier not found"))
		return
	}
	h.redirect(c, "/suppliers")
}

func (h *Handler) DeleteSupplier(c *gin.Context) {
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
	h.redirect(c, "/suppliers")
}
