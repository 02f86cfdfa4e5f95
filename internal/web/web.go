// Package web serves the server-rendered pages: one list, create, edit and
// delete flow per collection plus the dashboard. Successful writes redirect
// to the collection's list with 303 See Other.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"fruit-store-api-server/internal/api/middleware"
	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/orders"
)

// listLimit caps every page listing and every select box.
const listLimit = 100

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

var funcs = template.FuncMap{
	"money":         money,
	"join":          join,
	"statusOptions": statusOptions,
}

var orderStatuses = []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}

// statusOptions lists the usual order statuses plus current when it is a
// custom one.
func statusOptions(current string) []string {
	for _, s := range orderStatuses {
		if s == current {
			return orderStatuses
		}
	}
	if current == "" || current == orders.UnknownStatus {
		return orderStatuses
	}
	return append([]string{current}, orderStatuses...)
}

func money(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", n)
	case *float64:
		if n == nil {
			return "0.00"
		}
		return fmt.Sprintf("%.2f", *n)
	case int32:
		return fmt.Sprintf("%d.00", n)
	case int64:
		return fmt.Sprintf("%d.00", n)
	case int:
		return fmt.Sprintf("%d.00", n)
	case nil:
		return "0.00"
	}
	return fmt.Sprint(v)
}

func join(v any) string {
	switch items := v.(type) {
	case []string:
		return strings.Join(items, ", ")
	case []any:
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, fmt.Sprint(it))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Handler serves every page.
type Handler struct {
	Store    *database.Store
	Orders   *orders.Service
	Resolver *orders.Resolver
	Log      logrus.FieldLogger
	Title    string
	// Debug shows unexpected error causes on the error page.
	Debug bool
}

func (h *Handler) render(c *gin.Context, name string, data gin.H) {
	data["AppTitle"] = h.Title
	c.HTML(http.StatusOK, name, data)
}

func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Unexpected {
		h.Log.WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.FullPath(),
			"error":      err,
		}).Error("Page request failed")
	}
	c.HTML(kind.HTTPStatus(), "error", gin.H{
		"AppTitle": h.Title,
		"Status":   kind.HTTPStatus(),
		"Message":  apperr.PublicMessage(err, h.Debug),
	})
}

func (h *Handler) redirect(c *gin.Context, path string) {
	c.Redirect(http.StatusSeeOther, path)
}

// bindForm binds a posted form, failing the request on missing fields.
func (h *Handler) bindForm(c *gin.Context, form any) bool {
	if err := c.ShouldBind(form); err != nil {
		h.fail(c, apperr.InvalidInputf("%s", err.Error()))
		return false
	}
	return true
}

// Dashboard shows the collection counters.
func (h *Handler) Dashboard(c *gin.Context) {
	data := gin.H{}
	stats, err := h.Store.Stats(c.Request.Context())
	if err != nil {
		h.Log.WithError(err).Warn("Dashboard statistics unavailable")
		data["Notice"] = "Statistics are unavailable right now."
	}
	data["Stats"] = stats
	h.render(c, "index", data)
}
