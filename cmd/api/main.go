// server/cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"fruit-store-api-server/config"
	"fruit-store-api-server/internal/api/handlers"
	"fruit-store-api-server/internal/api/routes"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/logger"
	"fruit-store-api-server/internal/s3"
	"fruit-store-api-server/internal/socket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("Could not load config: %v", err)
	}

	log := logger.New(cfg.Log)
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	log.WithFields(logrus.Fields{
		"app":      cfg.App.Title,
		"version":  cfg.App.Version,
		"database": cfg.Mongo.DBName,
		"addr":     cfg.Addr(),
		"debug":    cfg.App.Debug,
	}).Info("Starting server")

	// 2. Connect to MongoDB. An unreachable server is logged, not fatal;
	// /health keeps reporting it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to create MongoDB client: %v", err)
	}
	store := database.NewStore(client.Database(cfg.Mongo.DBName))

	pingCtx, cancel := context.WithTimeout(ctx, database.PingTimeout)
	if err := store.CheckConnection(pingCtx); err != nil {
		log.WithError(err).Warn("MongoDB connection failed")
	} else {
		log.Info("MongoDB connection successful")
		if cfg.Seed.DemoData {
			if err := database.SeedDemoData(ctx, store, log); err != nil {
				log.WithError(err).Error("Failed to seed demo data")
			}
		}
	}
	cancel()

	// 3. Optional photo storage
	var photos handlers.PhotoUploader
	if cfg.S3.Enabled() {
		uploader, err := s3.NewUploader(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("Failed to create S3 uploader: %v", err)
		}
		photos = uploader
		log.WithField("bucket", cfg.S3.Bucket).Info("Photo uploads enabled")
	}

	wsHub := socket.NewHub(log)
	router := routes.SetupRouter(cfg, log, store, photos, wsHub)

	// 4. Start server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()
	log.Infof("Listening on http://%s", cfg.Addr())

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	wsHub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.WithError(err).Error("MongoDB disconnect failed")
	}
	log.Info("MongoDB connection closed")
}
