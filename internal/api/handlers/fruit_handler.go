// server/internal/api/handlers/fruit_handler.go
package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/serialize"
)

// PhotoUploader stores an object and returns its public URL.
type PhotoUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

type FruitHandler struct {
	Base
	Store *database.Store
	// Photos is nil when object storage is not configured.
	Photos PhotoUploader
}

type CreateFruitRequest struct {
	BarCode    string   `json:"barCode" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	Category   string   `json:"category" binding:"required"`
	PricePerKg *float64 `json:"pricePerKg" binding:"required,gte=0"`
	StockKg    *int     `json:"stockKg" binding:"required,gte=0"`
	Country    string   `json:"country" binding:"required"`
	SupplierID string   `json:"supplierId" binding:"required"`
	IsOrganic  bool     `json:"isOrganic"`
}

type UpdateFruitRequest struct {
	BarCode    *string  `json:"barCode"`
	Name       *string  `json:"name"`
	Category   *string  `json:"category"`
	PricePerKg *float64 `json:"pricePerKg" binding:"omitempty,gte=0"`
	StockKg    *int     `json:"stockKg" binding:"omitempty,gte=0"`
	Country    *string  `json:"country"`
	SupplierID *string  `json:"supplierId"`
	IsOrganic  *bool    `json:"isOrganic"`
}

type fruitQuery struct {
	PageQuery
	Category  string `form:"category"`
	IsOrganic *bool  `form:"is_organic"`
	MinStock  *int   `form:"min_stock" binding:"omitempty,gte=0"`
}

// withSupplierName serializes a fruit and adds the name of its supplier.
func (h *FruitHandler) withSupplierName(ctx context.Context, fruit *models.Fruit) (serialize.Doc, error) {
	doc, err := serialize.Struct(fruit)
	if err != nil {
		return nil, err
	}
	if !fruit.SupplierID.IsZero() {
		doc = doc.Set("supplierName", h.Store.SupplierName(ctx, fruit.SupplierID))
	}
	return doc, nil
}

// ListFruits returns a page of fruits with their supplier names.
func (h *FruitHandler) ListFruits(c *gin.Context) {
	var q fruitQuery
	if !h.bindQuery(c, &q) {
		return
	}
	q.clamp()

	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.IsOrganic != nil {
		filter["isOrganic"] = *q.IsOrganic
	}
	if q.MinStock != nil {
		filter["stockKg"] = bson.M{"$gte": *q.MinStock}
	}

	ctx := c.Request.Context()
	fruits, err := h.Store.Fruits.Find(ctx, filter, q.Skip, q.Limit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "list fruits"))
		return
	}
	total, err := h.Store.Fruits.Count(ctx, filter)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "count fruits"))
		return
	}

	docs := make([]serialize.Doc, 0, len(fruits))
	for i := range fruits {
		doc, err := h.withSupplierName(ctx, &fruits[i])
		if err != nil {
			h.fail(c, apperr.Wrap(err, "serialize fruit"))
			return
		}
		docs = append(docs, doc)
	}

	respondList(c, docs, newPagination(q.PageQuery, total))
}

func (h *FruitHandler) findFruit(ctx context.Context, id string) (*models.Fruit, error) {
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

// GetFruit returns one fruit by system id.
func (h *FruitHandler) GetFruit(c *gin.Context) {
	fruit, err := h.findFruit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	doc, err := h.withSupplierName(c.Request.Context(), fruit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "serialize fruit"))
		return
	}
	respondOK(c, doc)
}

// CreateFruit stores a new fruit.
func (h *FruitHandler) CreateFruit(c *gin.Context) {
	var req CreateFruitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplierID, err := database.ParseID(req.SupplierID)
	if err != nil {
		h.fail(c, err)
		return
	}

	fruit := models.Fruit{
		BarCode:    req.BarCode,
		Name:       req.Name,
		Category:   req.Category,
		PricePerKg: *req.PricePerKg,
		StockKg:    *req.StockKg,
		Country:    req.Country,
		SupplierID: supplierID,
		IsOrganic:  req.IsOrganic,
	}
	id, err := h.Store.Fruits.InsertOne(c.Request.Context(), &fruit)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "create fruit"))
		return
	}

	respondCreated(c, gin.H{
		"message":  "Fruit created successfully",
		"fruit_id": id.Hex(),
	})
}

// UpdateFruit sets the provided fields only.
func (h *FruitHandler) UpdateFruit(c *gin.Context) {
	oid, err := database.ParseID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var req UpdateFruitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	set := bson.M{}
	setIf(set, "barCode", req.BarCode)
	setIf(set, "name", req.Name)
	setIf(set, "category", req.Category)
	setIf(set, "pricePerKg", req.PricePerKg)
	setIf(set, "stockKg", req.StockKg)
	setIf(set, "country", req.Country)
	setIf(set, "isOrganic", req.IsOrganic)
	if req.SupplierID != nil {
		supplierID, err := database.ParseID(*req.SupplierID)
		if err != nil {
			h.fail(c, err)
			return
		}
		set["supplierId"] = supplierID
	}
	if len(set) == 0 {
		h.fail(c, apperr.InvalidInputf("No update data provided"))
		return
	}

	matched, err := h.Store.Fruits.UpdateOne(c.Request.Context(), database.ByID(oid), set)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update fruit"))
		return
	}
	if matched == 0 {
		h.fail(c, apperr.NotFoundf("Fruit not found"))
		return
	}
	respondMessage(c, "Fruit updated successfully")
}

// DeleteFruit removes a fruit. Orders referencing it show a placeholder.
func (h *FruitHandler) DeleteFruit(c *gin.Context) {
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
	respondMessage(c, "Fruit deleted successfully")
}

// UploadFruitPhoto stores the "photo" form file in object storage and sets
// the fruit's imageUrl.
func (h *FruitHandler) UploadFruitPhoto(c *gin.Context) {
	if h.Photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Photo storage is not configured"})
		return
	}

	ctx := c.Request.Context()
	fruit, err := h.findFruit(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	header, err := c.FormFile("photo")
	if err != nil {
		h.fail(c, apperr.InvalidInputf("A photo file is required"))
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		h.fail(c, apperr.InvalidInputf("Photo must be an image, got %q", contentType))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.fail(c, apperr.Wrap(err, "open photo"))
		return
	}
	defer file.Close()

	key := photoKey(fruit.ID, header.Filename)
	url, err := h.Photos.UploadFile(ctx, file, key, contentType)
	if err != nil {
		h.fail(c, apperr.Wrap(err, "upload photo"))
		return
	}

	matched, err := h.Store.Fruits.UpdateOne(ctx, database.ByID(fruit.ID), bson.M{"imageUrl": url})
	if err != nil {
		h.fail(c, apperr.Wrap(err, "update fruit"))
		return
	}
	if matched == 0 {
		h.logger().WithFields(logrus.Fields{"fruit_id": fruit.ID.Hex(), "object_key": key}).
			Warn("Fruit deleted during photo upload")
		h.fail(c, apperr.NotFoundf("Fruit not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Photo uploaded successfully",
		"data":    gin.H{"imageUrl": url},
	})
}

func photoKey(fruitID primitive.ObjectID, filename string) string {
	return fmt.Sprintf("fruits/%s/%s%s", fruitID.Hex(), uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
}

func setIf[T any](set bson.M, key string, v *T) {
	if v != nil {
		set[key] = *v
	}
}
