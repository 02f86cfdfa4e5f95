package web

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/serialize"
)

type fruitForm struct {
	BarCode    string   `form:"barCode" binding:"required"`
	Name       string   `form:"name" binding:"required"`
	Category   string   `form:"category" binding:"required"`
	PricePerKg *float64 `form:"pricePerKg" binding:"required,gte=0"`
	StockKg    *int     `form:"stockKg" binding:"required,gte=0"`
	Country    string   `form:"country" binding:"required"`
	SupplierID string   `form:"supplierId" binding:"required"`
	IsOrganic  bool     `form:"isOrganic"`
}

func (f fruitForm) fruit() (models.Fruit, error) {
	supplierID, err := database.ParseID(f.SupplierID)
	if err != nil {
		return models.Fruit{}, err
	}
	return models.Fruit{
		BarCode:    f.BarCode,
		Name:       f.Name,
		Category:   f.Category,
		PricePerKg: *f.PricePerKg,
		StockKg:    *f.StockKg,
		Country:    f.Country,
		SupplierID: supplierID,
		IsOrganic:  f.IsOrganic,
	}, nil
}

// activeSuppliers feeds the supplier select box.
func (h *Handler) activeSuppliers(ctx context.Context) ([]serialize.Doc, error) {
	suppliers, err := h.Store.Suppliers.Find(ctx, bson.M{"active": true}, 0, listLimit)
	if err != nil {
		return nil, apperr.Wrap(err, "list suppliers")
	}
	docs, err := serialize.Structs(suppliers)
	if err != nil {
		return nil, apperr.Wrap(err, "serialize suppliers")
	}
	return docs, nil
}

func (h *Handler) ListFruits(c *gin.Context) {
	ctx := c.Request.Context()
	fruits, err := h.Store.Fruits.Find(ctx, bson.M{}, 0, listLimit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "list fruits"))
		return
	}

	docs := make([]serialize.Doc, 0, len(fruits))
	for i := range fruits {
		doc, err := serialize.Struct(&fruits[i])
		if err != nil {
			h.fail(c, apperr.Wrap(err, "serialize fruit"))
			return
		}
		if !fruits[i].SupplierID.IsZero() {
			doc = doc.Set("supplierName", h.Store.SupplierName(ctx, fruits[i].SupplierID))
		}
		docs = append(docs, doc)
	}
	h.render(c, "fruits/list", gin.H{"Fruits": docs})
}

func (h *Handler) NewFruit(c *gin.Context) {
	suppliers, err := h.activeSuppliers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, "fruits/create", gin.H{"Suppliers": suppliers})
}

func (h *Handler) CreateFruit(c *gin.Context) {
	var form fruitForm
	if !h.bindForm(c, &form) {
		return
	}
	fruit, err := form.fruit()
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.Store.Fruits.InsertOne(c.Request.Context(), &fruit); err != nil {
		h.fail(c, apperr.Wrap(err, "create fruit"))
		return
	}
	h.redirect(c, "/fruits")
}

func (h *Handler) findFruit(ctx context.Context, id string) (*models.Fruit, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	fruit, err := h.Store.Fruits.FindOne(ctx, database.ByID(oid))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFoundf("Fruit not found")
		}
		return nil, apperr.Wrap(err, "find fruit")
	}
	return fruit, nil
}

func (h *Handler) EditFruit(c *gin.Context) {
	ctx := c.Request.Context()
	fruit, err := h.findFruit(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	doc, err := serialize.Struct(fruit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize fruit"))
		return
	}
	suppliers, err := h.activeSuppliers(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, "fruits/edit", gin.H{"Fruit": doc, "Suppliers": suppliers})
}

// UpdateFruit overwrites every field from the form. The photo URL is kept.
func (h *Handler) UpdateFruit(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var form fruitForm
	if !h.bindForm(c, &form) {
		return
	}
	fruit, err := form.fruit()
	if err != nil {
		h.fail(c, err)
		return
	}

	matched, err := h.Store.Fruits.UpdateOne(c.Request.Context(), database.ByID(oid), bson.M{
		"barCode":    fruit.BarCode,
		"name":       fruit.Name,
		"category":   fruit.Category,
		"pricePerKg": fruit.PricePerKg,
		"stockKg":    fruit.StockKg,
		"country":    fruit.Country,
		"supplierId": fruit.SupplierID,
		"isOrganic":  fruit.IsOrganic,
	})
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update fruit"))
		return
	}
	if matched == 0 {
		h.fail(c, apperr.NotFoundf("Fruit not found"))
		return
	}
	h.redirect(c, "/fruits")
}

func (h *Handler) DeleteFruit(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	deleted, err := h.Store.Fruits.DeleteOne(c.Request.Context(), database.ByID(oid))
	if err != nil {
		h.fail(c, apperr.Wrap(err, "delete fruit"))
		return
	}
	if deleted == 0 {
		h.fail(c, apperr.NotFoundf("Fruit not found"))
		return
	}
	h.redirect(c, "/fruits")
}
