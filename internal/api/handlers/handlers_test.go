package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fruit-store-api-server/internal/api/handlers"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/database/dbtest"
	"fruit-store-api-server/internal/logger"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/orders"
)

type fakePhotos struct {
	key         string
	contentType string
	body        []byte
	err         error
	// during runs inside UploadFile, before it returns.
	during func()
}

func (f *fakePhotos) UploadFile(_ context.Context, file io.Reader, key, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.during != nil {
		f.during()
	}
	f.key, f.contentType = key, contentType
	f.body, _ = io.ReadAll(file)
	return "https://cdn.example.com/" + key, nil
}

type testAPI struct {
	router *gin.Engine
	store  *database.Store
	mem    *dbtest.Memory
}

func newTestAPI(t *testing.T, photos handlers.PhotoUploader) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, mem := dbtest.NewStore()
	log := logger.Discard()

	base := handlers.Base{Log: log}
	customers := &handlers.CustomerHandler{Base: base, Store: store}
	fruits := &handlers.FruitHandler{Base: base, Store: store, Photos: photos}
	suppliers := &handlers.SupplierHandler{Base: base, Store: store}
	orderHandler := &handlers.OrderHandler{
		Base:     base,
		Service:  orders.NewService(store, nil),
		Resolver: orders.NewResolver(store, log),
	}
	system := &handlers.SystemHandler{Base: base, Store: store, App: "Fruit Store", Version: "test"}

	r := gin.New()
	r.GET("/health", system.Health)
	api := r.Group("/api")
	api.GET("/stats", system.GetStats)
	api.GET("/customers", customers.ListCustomers)
	api.POST("/customers", customers.CreateCustomer)
	api.GET("/customers/:id", customers.GetCustomer)
	api.PUT("/customers/:id", customers.UpdateCustomer)
	api.DELETE("/customers/:id", customers.DeleteCustomer)
	api.GET("/fruits", fruits.ListFruits)
	api.POST("/fruits", fruits.CreateFruit)
	api.GET("/fruits/:id", fruits.GetFruit)
	api.PUT("/fruits/:id", fruits.UpdateFruit)
	api.DELETE("/fruits/:id", fruits.DeleteFruit)
	api.POST("/fruits/:id/photo", fruits.UploadFruitPhoto)
	api.GET("/suppliers", suppliers.ListSuppliers)
	api.POST("/suppliers", suppliers.CreateSupplier)
	api.GET("/suppliers/:id", suppliers.GetSupplier)
	api.PUT("/suppliers/:id", suppliers.UpdateSupplier)
	api.DELETE("/suppliers/:id", suppliers.DeleteSupplier)
	api.GET("/orders", orderHandler.ListOrders)
	api.POST("/orders", orderHandler.CreateOrder)
	api.GET("/orders/:id", orderHandler.GetOrder)
	api.PUT("/orders/:id", orderHandler.UpdateOrder)
	api.DELETE("/orders/:id", orderHandler.DeleteOrder)

	return &testAPI{router: r, store: store, mem: mem}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w.Code, decode(t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testAPI) seedFruit(name string, price float64, stock int) primitive.ObjectID {
	return a.mem.Fruits.Seed(models.Fruit{Name: name, Category: "Citrus", PricePerKg: price, StockKg: stock})[0]
}

func TestCustomerLifecycle(t *testing.T) {
	api := newTestAPI(t, nil)

	code, body := api.do(t, http.MethodPost, "/api/customers", gin.H{
		"customerId": "C1",
		"name":       "Ana",
		"phone":      "555",
		"address":    "Main St",
		"isMember":   true,
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["success"])
	id, _ := body["customer_id"].(string)
	require.Len(t, id, 24)

	code, body = api.do(t, http.MethodGet, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, id, data["_id"])
	assert.Equal(t, "C1", data["customerId"])
	assert.Equal(t, "Ana", data["name"])

	code, _ = api.do(t, http.MethodPut, "/api/customers/"+id, gin.H{"name": "Ana Maria"})
	require.Equal(t, http.StatusOK, code)
	_, body = api.do(t, http.MethodGet, "/api/customers/"+id, nil)
	data = body["data"].(map[string]any)
	assert.Equal(t, "Ana Maria", data["name"])
	assert.Equal(t, "555", data["phone"], "unset fields are kept")

	code, body = api.do(t, http.MethodPut, "/api/customers/"+id, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No update data provided", body["error"])

	code, body = api.do(t, http.MethodDelete, "/api/customers/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Customer deleted successfully", body["message"])

	code, body = api.do(t, http.MethodGet, "/api/customers/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Customer not found", body["error"])
}

func TestCreateCustomer_MissingField(t *testing.T) {
	api := newTestAPI(t, nil)

	code, body := api.do(t, http.MethodPost, "/api/customers", gin.H{"customerId": "C1", "name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Zero(t, api.mem.Customers.Len())
}

func TestMalformedIdentifier(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/api/customers/xyz", "/api/fruits/xyz", "/api/suppliers/xyz", "/api/orders/xyz"} {
		t.Run(path, func(t *testing.T) {
			code, body := api.do(t, http.MethodGet, path, nil)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Contains(t, body["error"], "Invalid identifier")
		})
	}
}

func TestListCustomers_MemberFilter(t *testing.T) {
	api := newTestAPI(t, nil)
	api.mem.Customers.Seed(
		models.Customer{CustomerID: "C1", Name: "Ana", IsMember: true},
		models.Customer{CustomerID: "C2", Name: "Ben"},
	)

	_, body := api.do(t, http.MethodGet, "/api/customers?is_member=true", nil)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Ana", data[0].(map[string]any)["name"])

	_, body = api.do(t, http.MethodGet, "/api/customers", nil)
	assert.Len(t, body["data"], 2)
}

func TestPagination(t *testing.T) {
	api := newTestAPI(t, nil)
	api.seedFruit("Apple", 1, 10)
	api.seedFruit("Pear", 2, 10)
	api.seedFruit("Plum", 3, 10)

	_, body := api.do(t, http.MethodGet, "/api/fruits?skip=1&limit=1", nil)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Pear", data[0].(map[string]any)["name"])
	page := body["pagination"].(map[string]any)
	assert.Equal(t, 1.0, page["skip"])
	assert.Equal(t, 1.0, page["limit"])
	assert.Equal(t, 3.0, page["total"])
	assert.Equal(t, true, page["has_more"])

	_, body = api.do(t, http.MethodGet, "/api/fruits?skip=2&limit=1", nil)
	assert.Equal(t, false, body["pagination"].(map[string]any)["has_more"])

	_, body = api.do(t, http.MethodGet, "/api/fruits?limit=5000", nil)
	assert.Equal(t, float64(handlers.MaxPageLimit), body["pagination"].(map[string]any)["limit"])

	for _, q := range []string{"limit=0", "skip=-1", "limit=abc"} {
		code, _ := api.do(t, http.MethodGet, "/api/fruits?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestListFruits_FiltersAndSupplierName(t *testing.T) {
	api := newTestAPI(t, nil)
	supplierID := api.mem.Suppliers.Seed(models.Supplier{Name: "Sunny Orchards", Active: true})[0]
	api.mem.Fruits.Seed(
		models.Fruit{Name: "Orange", Category: "Citrus", StockKg: 50, SupplierID: supplierID, IsOrganic: true},
		models.Fruit{Name: "Lemon", Category: "Citrus", StockKg: 5, SupplierID: primitive.NewObjectID()},
		models.Fruit{Name: "Apple", Category: "Pome", StockKg: 80},
	)

	_, body := api.do(t, http.MethodGet, "/api/fruits?category=Citrus", nil)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, "Sunny Orchards", data[0].(map[string]any)["supplierName"])
	assert.Equal(t, database.UnknownSupplier, data[1].(map[string]any)["supplierName"])

	_, body = api.do(t, http.MethodGet, "/api/fruits?min_stock=10", nil)
	assert.Len(t, body["data"], 2)

	_, body = api.do(t, http.MethodGet, "/api/fruits?is_organic=true", nil)
	assert.Len(t, body["data"], 1)
}

func TestCreateFruit(t *testing.T) {
	api := newTestAPI(t, nil)
	supplierID := primitive.NewObjectID().Hex()

	fruit := gin.H{
		"barCode":    "123",
		"name":       "Kiwi",
		"category":   "Berry",
		"pricePerKg": 0,
		"stockKg":    0,
		"country":    "NZ",
		"supplierId": supplierID,
	}
	code, body := api.do(t, http.MethodPost, "/api/fruits", fruit)
	require.Equal(t, http.StatusCreated, code, body)
	assert.NotEmpty(t, body["fruit_id"])

	delete(fruit, "stockKg")
	code, _ = api.do(t, http.MethodPost, "/api/fruits", fruit)
	assert.Equal(t, http.StatusBadRequest, code)

	fruit["stockKg"] = 1
	fruit["supplierId"] = "nope"
	code, _ = api.do(t, http.MethodPost, "/api/fruits", fruit)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 1, api.mem.Fruits.Len())
}

func TestSupplierDefaultsAndActiveFilter(t *testing.T) {
	api := newTestAPI(t, nil)

	code, body := api.do(t, http.MethodPost, "/api/suppliers", gin.H{
		"name":           "Sunny Orchards",
		"phone":          "555",
		"location":       "Valencia",
		"fruitsSupplied": []string{"Orange"},
	})
	require.Equal(t, http.StatusCreated, code, body)
	api.mem.Suppliers.Seed(models.Supplier{Name: "Closed Farm"})

	_, body = api.do(t, http.MethodGet, "/api/suppliers?active_only=true", nil)
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, true, data[0].(map[string]any)["active"])

	_, body = api.do(t, http.MethodGet, "/api/suppliers", nil)
	assert.Len(t, body["data"], 2)
}

func TestCreateOrder(t *testing.T) {
	api := newTestAPI(t, nil)
	fruitID := api.seedFruit("Apple", 2.5, 100)
	api.mem.Customers.Seed(models.Customer{CustomerID: "C1", Name: "Ana"})

	code, body := api.do(t, http.MethodPost, "/api/orders", gin.H{
		"customerId": "C1",
		"items":      []gin.H{{"fruitId": fruitID.Hex(), "quantityKg": 4}},
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, 10.0, body["total_amount"])
	orderID := body["order_id"].(string)

	code, body = api.do(t, http.MethodGet, "/api/orders/"+orderID, nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Ana", data["customerName"])
	assert.Equal(t, "Pending", data["status"])
	items := data["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].(map[string]any)["fruitName"])
}

func TestCreateOrder_Failures(t *testing.T) {
	api := newTestAPI(t, nil)
	fruitID := api.seedFruit("Apple", 2.5, 3)
	api.mem.Customers.Seed(models.Customer{CustomerID: "C1", Name: "Ana"})

	tests := []struct {
		name string
		body gin.H
		code int
		msg  string
	}{
		{
			name: "insufficient stock",
			body: gin.H{"customerId": "C1", "items": []gin.H{{"fruitId": fruitID.Hex(), "quantityKg": 4}}},
			code: http.StatusBadRequest,
			msg:  "Insufficient stock for Apple. Available: 3kg",
		},
		{
			name: "unknown customer",
			body: gin.H{"customerId": "C9", "items": []gin.H{{"fruitId": fruitID.Hex(), "quantityKg": 1}}},
			code: http.StatusNotFound,
			msg:  "Customer not found",
		},
		{
			name: "unknown fruit",
			body: gin.H{"customerId": "C1", "items": []gin.H{{"fruitId": primitive.NewObjectID().Hex(), "quantityKg": 1}}},
			code: http.StatusNotFound,
		},
		{
			name: "no items",
			body: gin.H{"customerId": "C1", "items": []gin.H{}},
			code: http.StatusBadRequest,
		},
		{
			name: "zero quantity",
			body: gin.H{"customerId": "C1", "items": []gin.H{{"fruitId": fruitID.Hex(), "quantityKg": 0}}},
			code: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := api.do(t, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, false, body["success"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}
	assert.Zero(t, api.mem.Orders.Len())
}

func TestListOrders_ReportsProblems(t *testing.T) {
	api := newTestAPI(t, nil)
	api.mem.Customers.Seed(models.Customer{CustomerID: "C1", Name: "Ana"})
	api.mem.Orders.Seed(
		bson.D{{Key: "customerId", Value: "C1"}, {Key: "items", Value: bson.A{}}, {Key: "totalAmount", Value: 1.5}, {Key: "status", Value: "Pending"}},
		bson.D{{Key: "customerId", Value: bson.A{"broken"}}, {Key: "status", Value: "Pending"}},
	)

	code, body := api.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)
	assert.Len(t, body["problems"], 1)
	assert.Equal(t, 2.0, body["pagination"].(map[string]any)["total"])

	_, body = api.do(t, http.MethodGet, "/api/orders?status=Shipped", nil)
	assert.Empty(t, body["data"])
	assert.NotContains(t, body, "problems")
}

func TestUpdateAndDeleteOrder(t *testing.T) {
	api := newTestAPI(t, nil)
	id := api.mem.Orders.Seed(models.Order{CustomerID: models.NewCustomerRef("C1"), Status: "Pending"})[0].Hex()

	code, body := api.do(t, http.MethodPut, "/api/orders/"+id, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No update data provided", body["error"])

	code, _ = api.do(t, http.MethodPut, "/api/orders/"+id, gin.H{"status": "Shipped"})
	require.Equal(t, http.StatusOK, code)
	_, body = api.do(t, http.MethodGet, "/api/orders/"+id, nil)
	assert.Equal(t, "Shipped", body["data"].(map[string]any)["status"])

	code, _ = api.do(t, http.MethodDelete, "/api/orders/"+id, nil)
	require.Equal(t, http.StatusOK, code)
	code, body = api.do(t, http.MethodDelete, "/api/orders/"+id, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Order not found", body["error"])
}

func TestStoreFailureIsHidden(t *testing.T) {
	api := newTestAPI(t, nil)
	api.mem.Customers.Err = errors.New("connection reset by peer")

	code, body := api.do(t, http.MethodGet, "/api/customers", nil)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["error"])
}

func TestStats(t *testing.T) {
	api := newTestAPI(t, nil)
	api.mem.Customers.Seed(models.Customer{CustomerID: "C1", IsMember: true}, models.Customer{CustomerID: "C2"})
	api.mem.Suppliers.Seed(models.Supplier{Name: "A", Active: true}, models.Supplier{Name: "B"})
	api.mem.Orders.Seed(models.Order{Status: "Pending"})

	code, body := api.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 2.0, data["customers_count"])
	assert.Equal(t, 1.0, data["suppliers_count"])
	assert.Equal(t, 2.0, data["total_suppliers"])
	assert.Equal(t, 1.0, data["pending_orders"])
	assert.Equal(t, 1.0, data["members_count"])
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	code, body := api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
	assert.NotContains(t, body, "error")

	api.store.Ping = func(context.Context) error { return errors.New("server selection timeout") }
	code, body = api.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "disconnected", body["database"])
	assert.Equal(t, "internal server error", body["error"])
}

func photoRequest(t *testing.T, path, filename, contentType string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadFruitPhoto(t *testing.T) {
	photos := &fakePhotos{}
	api := newTestAPI(t, photos)
	fruitID := api.seedFruit("Apple", 1, 1)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, photoRequest(t, "/api/fruits/"+fruitID.Hex()+"/photo", "Apple.JPG", "image/jpeg"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.True(t, strings.HasPrefix(photos.key, "fruits/"+fruitID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(photos.key, ".jpg"))
	assert.Equal(t, "image/jpeg", photos.contentType)
	assert.Equal(t, "fake image bytes", string(photos.body))

	fruit, err := api.store.Fruits.FindOne(context.Background(), database.ByID(fruitID))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+photos.key, fruit.ImageURL)
}

func TestUploadFruitPhoto_Rejected(t *testing.T) {
	t.Run("storage not configured", func(t *testing.T) {
		api := newTestAPI(t, nil)
		fruitID := api.seedFruit("Apple", 1, 1)
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, photoRequest(t, "/api/fruits/"+fruitID.Hex()+"/photo", "a.png", "image/png"))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("not an image", func(t *testing.T) {
		photos := &fakePhotos{}
		api := newTestAPI(t, photos)
		fruitID := api.seedFruit("Apple", 1, 1)
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, photoRequest(t, "/api/fruits/"+fruitID.Hex()+"/photo", "a.txt", "text/plain"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, photos.key)
	})

	t.Run("fruit deleted during upload", func(t *testing.T) {
		photos := &fakePhotos{}
		api := newTestAPI(t, photos)
		fruitID := api.seedFruit("Apple", 1, 1)
		photos.during = func() {
			_, err := api.store.Fruits.DeleteOne(context.Background(), database.ByID(fruitID))
			require.NoError(t, err)
		}
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, photoRequest(t, "/api/fruits/"+fruitID.Hex()+"/photo", "a.png", "image/png"))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Zero(t, api.mem.Fruits.Len())
	})

	t.Run("unknown fruit", func(t *testing.T) {
		api := newTestAPI(t, &fakePhotos{})
		w := httptest.NewRecorder()
		api.router.ServeHTTP(w, photoRequest(t, "/api/fruits/"+primitive.NewObjectID().Hex()+"/photo", "a.png", "image/png"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
