// server/internal/api/handlers/response.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fruit-store-api-server/internal/api/middleware"
	"fruit-store-api-server/internal/apperr"
)

// MaxPageLimit caps the limit query parameter.
const MaxPageLimit = 1000

// Base is embedded by every JSON handler.
type Base struct {
	Log logrus.FieldLogger
	// Debug exposes unexpected error causes to clients.
	Debug bool
}

// PageQuery is the skip/limit pair accepted by every list endpoint.
type PageQuery struct {
	Skip  int64 `form:"skip,default=0" binding:"gte=0"`
	Limit int64 `form:"limit,default=100" binding:"gte=1"`
}

func (p *PageQuery) clamp() {
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
}

// Pagination is returned next to every list.
type Pagination struct {
	Skip    int64 `json:"skip"`
	Limit   int64 `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"has_more"`
}

func newPagination(p PageQuery, total int64) Pagination {
	return Pagination{
		Skip:    p.Skip,
		Limit:   p.Limit,
		Total:   total,
		HasMore: p.Skip+p.Limit < total,
	}
}

func (b Base) bindQuery(c *gin.Context, q any) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		b.fail(c, apperr.InvalidInputf("%s", err.Error()))
		return false
	}
	return true
}

func (b Base) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		b.fail(c, apperr.InvalidInputf("%s", err.Error()))
		return false
	}
	return true
}

func (b Base) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Unexpected {
		b.logger().WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.FullPath(),
			"error":      err,
		}).Error("Request failed")
	}
	c.JSON(kind.HTTPStatus(), gin.H{
		"success": false,
		"error":   apperr.PublicMessage(err, b.Debug),
	})
}

func (b Base) logger() logrus.FieldLogger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondList(c *gin.Context, data any, page Pagination) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "pagination": page})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func respondCreated(c *gin.Context, body gin.H) {
	body["success"] = true
	c.JSON(http.StatusCreated, body)
}
