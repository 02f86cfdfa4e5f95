// server/internal/api/routes/routes.go
package routes

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fruit-store-api-server/config"
	"fruit-store-api-server/internal/api/handlers"
	"fruit-store-api-server/internal/api/middleware"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/orders"
	"fruit-store-api-server/internal/socket"
	"fruit-store-api-server/internal/web"
)

// SetupRouter wires every handler. photos may be nil when object storage is
// not configured.
func SetupRouter(
	cfg config.Config,
	log logrus.FieldLogger,
	store *database.Store,
	photos handlers.PhotoUploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(log))
	// Preflight requests match no route, so CORS runs before routing.
	router.Use(onlyUnder("/api/", cors.New(corsConfig(cfg.Server.CORSOrigins))))
	router.SetHTMLTemplate(web.Templates())

	if info, err := os.Stat(cfg.App.StaticDir); err == nil && info.IsDir() {
		router.Static("/static", cfg.App.StaticDir)
	}

	var events orders.Publisher
	if wsHub != nil {
		events = wsHub
	}
	orderService := orders.NewService(store, events)
	orderResolver := orders.NewResolver(store, log)

	base := handlers.Base{Log: log, Debug: cfg.App.Debug}
	customerHandler := &handlers.CustomerHandler{Base: base, Store: store}
	fruitHandler := &handlers.FruitHandler{Base: base, Store: store, Photos: photos}
	supplierHandler := &handlers.SupplierHandler{Base: base, Store: store}
	orderHandler := &handlers.OrderHandler{Base: base, Service: orderService, Resolver: orderResolver}
	systemHandler := &handlers.SystemHandler{Base: base, Store: store, App: cfg.App.Title, Version: cfg.App.Version}

	router.GET("/health", systemHandler.Health)

	api := router.Group("/api")
	{
		api.GET("/stats", systemHandler.GetStats)

		if wsHub != nil {
			webSocketHandler := &handlers.WebSocketHandler{Base: base, Hub: wsHub}
			api.GET("/ws", webSocketHandler.ServeWs)
		}

		customers := api.Group("/customers")
		{
			customers.GET("", customerHandler.ListCustomers)
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", customerHandler.DeleteCustomer)
		}

		fruits := api.Group("/fruits")
		{
			fruits.GET("", fruitHandler.ListFruits)
			fruits.POST("", fruitHandler.CreateFruit)
			fruits.GET("/:id", fruitHandler.GetFruit)
			fruits.PUT("/:id", fruitHandler.UpdateFruit)
			fruits.DELETE("/:id", fruitHandler.DeleteFruit)
			fruits.POST("/:id/photo", fruitHandler.UploadFruitPhoto)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.GET("", supplierHandler.ListSuppliers)
			suppliers.POST("", supplierHandler.CreateSupplier)
			suppliers.GET("/:id", supplierHandler.GetSupplier)
			suppliers.PUT("/:id", supplierHandler.UpdateSupplier)
			suppliers.DELETE("/:id", supplierHandler.DeleteSupplier)
		}

		ordersGroup := api.Group("/orders")
		{
			ordersGroup.GET("", orderHandler.ListOrders)
			ordersGroup.POST("", orderHandler.CreateOrder)
			ordersGroup.GET("/:id", orderHandler.GetOrder)
			ordersGroup.PUT("/:id", orderHandler.UpdateOrder)
			ordersGroup.DELETE("/:id", orderHandler.DeleteOrder)
		}
	}

	pages := &web.Handler{
		Store:    store,
		Orders:   orderService,
		Resolver: orderResolver,
		Log:      log,
		Title:    cfg.App.Title,
		Debug:    cfg.App.Debug,
	}
	router.GET("/", pages.Dashboard)
	registerPages(router, "/customers", pages.ListCustomers, pages.NewCustomer, pages.CreateCustomer, pages.EditCustomer, pages.UpdateCustomer, pages.DeleteCustomer)
	registerPages(router, "/fruits", pages.ListFruits, pages.NewFruit, pages.CreateFruit, pages.EditFruit, pages.UpdateFruit, pages.DeleteFruit)
	registerPages(router, "/suppliers", pages.ListSuppliers, pages.NewSupplier, pages.CreateSupplier, pages.EditSupplier, pages.UpdateSupplier, pages.DeleteSupplier)
	registerPages(router, "/orders", pages.ListOrders, pages.NewOrder, pages.CreateOrder, pages.EditOrder, pages.UpdateOrder, pages.DeleteOrder)

	return router
}

// registerPages adds the list, create, edit and delete pages of one
// collection.
func registerPages(router *gin.Engine, prefix string, list, newForm, create, edit, update, remove gin.HandlerFunc) {
	g := router.Group(prefix)
	g.GET("", list)
	g.GET("/create", newForm)
	g.POST("/create", create)
	g.GET("/:id/edit", edit)
	g.POST("/:id/edit", update)
	g.POST("/:id/delete", remove)
}

func onlyUnder(prefix string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			h(c)
		}
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
