// server/internal/api/handlers/system_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
)

// SystemHandler serves dashboard statistics and the health check.
type SystemHandler struct {
	Base
	Store   *database.Store
	App     string
	Version string
}

// GetStats returns the dashboard counters.
func (h *SystemHandler) GetStats(c *gin.Context) {
	stats, err := h.Store.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, apperr.Wrap(err, "count documents"))
		return
	}
	respondOK(c, stats)
}

// Health reports whether the database answers a ping. It responds 200 in
// both states; the body carries the verdict.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), database.PingTimeout)
	defer cancel()

	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"app":       h.App,
		"version":   h.Version,
		"database":  "connected",
	}
	if err := h.Store.CheckConnection(ctx); err != nil {
		body["status"] = "unhealthy"
		body["database"] = "disconnected"
		body["error"] = apperr.PublicMessage(err, h.Debug)
		h.logger().WithError(err).Warn("Health check failed")
	}
	c.JSON(http.StatusOK, body)
}
