package orders

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
	"fruit-store-api-server/internal/serialize"
)

// Placeholders shown when a reference cannot be resolved.
const (
	NoCustomerID  = "No Customer ID"
	NoFruitID     = "No Fruit ID"
	UnknownFruit  = "Unknown Fruit"
	UnknownStatus = "Unknown"
	NoOrderDate   = "N/A"
)

// ItemView is an order item joined with its fruit.
type ItemView struct {
	FruitID    string   `json:"fruitId"`
	FruitName  string   `json:"fruitName"`
	FruitPrice *float64 `json:"fruitPrice,omitempty"`
	QuantityKg float64  `json:"quantityKg"`
}

// View is an order ready for display.
type View struct {
	ID           string             `json:"_id"`
	OrderDate    string             `json:"orderDate"`
	CustomerID   models.CustomerRef `json:"customerId"`
	CustomerName string             `json:"customerName"`
	Items        []ItemView         `json:"items"`
	TotalAmount  float64            `json:"totalAmount"`
	Status       string             `json:"status"`
}

// Problem describes a stored order that was left out of a listing.
type Problem struct {
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error"`
}

// Listing is one page of resolved orders. Orders that could not be
// processed are reported in Problems instead of failing the page.
type Listing struct {
	Orders   []View    `json:"orders"`
	Total    int64     `json:"total"`
	Problems []Problem `json:"problems,omitempty"`
}

// Filter narrows an order listing.
type Filter struct {
	Status     string
	CustomerID string
}

// BSON returns the storage filter.
func (f Filter) BSON() bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}
	return filter
}

// customerStrategy turns a stored reference into one customer query. ok is
// false when the strategy does not apply to the reference.
type customerStrategy struct {
	name  string
	query func(ref models.CustomerRef) (filter bson.M, ok bool)
}

// customerStrategies are tried in order; the first customer found wins.
var customerStrategies = []customerStrategy{
	{name: "stored value", query: func(ref models.CustomerRef) (bson.M, bool) {
		return bson.M{"customerId": ref.Value()}, true
	}},
	{name: "system id", query: func(ref models.CustomerRef) (bson.M, bool) {
		switch v := ref.Value().(type) {
		case primitive.ObjectID:
			return database.ByID(v), true
		case string:
			if oid, err := primitive.ObjectIDFromHex(v); err == nil {
				return database.ByID(oid), true
			}
		}
		return nil, false
	}},
	{name: "integer", query: func(ref models.CustomerRef) (bson.M, bool) {
		switch v := ref.Value().(type) {
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, false
			}
			return bson.M{"customerId": n}, true
		case int64:
			return bson.M{"customerId": v}, true
		case float64:
			if v != math.Trunc(v) || math.IsInf(v, 0) {
				return nil, false
			}
			return bson.M{"customerId": int64(v)}, true
		}
		return nil, false
	}},
	{name: "string", query: func(ref models.CustomerRef) (bson.M, bool) {
		// A string reference was already tried as stored.
		if _, ok := ref.Value().(string); ok {
			return nil, false
		}
		return bson.M{"customerId": ref.String()}, true
	}},
}

// Resolver joins stored orders with their customers and fruits at read time.
type Resolver struct {
	customers database.Collection[models.Customer]
	fruits    database.Collection[models.Fruit]
	orders    database.Collection[models.Order]
	log       logrus.FieldLogger
}

func NewResolver(store *database.Store, log logrus.FieldLogger) *Resolver {
	return &Resolver{
		customers: store.Customers,
		fruits:    store.Fruits,
		orders:    store.Orders,
		log:       log,
	}
}

// List resolves one page of orders. A failed query is returned as an error;
// a single order that cannot be processed is skipped and reported in the
// listing's Problems.
func (r *Resolver) List(ctx context.Context, filter bson.M, skip, limit int64) (*Listing, error) {
	raws, err := r.orders.FindRaw(ctx, filter, skip, limit)
	if err != nil {
		return nil, apperr.Wrap(err, "list orders")
	}
	total, err := r.orders.Count(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(err, "count orders")
	}

	listing := &Listing{Orders: make([]View, 0, len(raws)), Total: total}
	for _, raw := range raws {
		view, err := r.resolveRaw(ctx, raw)
		if err != nil {
			p := Problem{OrderID: rawID(raw), Error: err.Error()}
			r.log.WithFields(logrus.Fields{
				"order_id": p.OrderID,
				"error":    p.Error,
			}).Warn("Skipping order that could not be resolved")
			listing.Problems = append(listing.Problems, p)
			continue
		}
		listing.Orders = append(listing.Orders, *view)
	}
	return listing, nil
}

// Get resolves a single order by its system identifier.
func (r *Resolver) Get(ctx context.Context, id string) (*View, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	order, err := r.orders.FindOne(ctx, database.ByID(oid))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFoundf("Order not found")
		}
		return nil, apperr.Wrap(err, "find order")
	}
	return r.Resolve(ctx, order), nil
}

func (r *Resolver) resolveRaw(ctx context.Context, raw bson.Raw) (view *View, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("resolve order: %v", rec)
		}
	}()

	var order models.Order
	if err := bson.Unmarshal(raw, &order); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return r.Resolve(ctx, &order), nil
}

// Resolve builds the display form of a decoded order. Lookups that fail
// degrade to placeholders.
func (r *Resolver) Resolve(ctx context.Context, order *models.Order) *View {
	view := &View{
		ID:           order.ID.Hex(),
		OrderDate:    NoOrderDate,
		CustomerID:   order.CustomerID,
		CustomerName: r.customerName(ctx, order.CustomerID),
		Items:        make([]ItemView, 0, len(order.Items)),
		TotalAmount:  order.TotalAmount,
		Status:       order.Status,
	}
	if !order.OrderDate.IsZero() {
		view.OrderDate = serialize.FormatDate(order.OrderDate)
	}
	if view.Status == "" {
		view.Status = UnknownStatus
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, r.item(ctx, item))
	}
	return view
}

func (r *Resolver) customerName(ctx context.Context, ref models.CustomerRef) string {
	if ref.IsZero() {
		return NoCustomerID
	}
	for _, s := range customerStrategies {
		filter, ok := s.query(ref)
		if !ok {
			continue
		}
		customer, err := r.customers.FindOne(ctx, filter)
		if err == nil {
			return customer.Name
		}
		if !errors.Is(err, database.ErrNotFound) {
			r.log.WithFields(logrus.Fields{
				"customer_ref": ref.String(),
				"strategy":     s.name,
				"error":        err,
			}).Warn("Customer lookup failed")
		}
	}
	return fmt.Sprintf("Unknown (%s)", ref.String())
}

func (r *Resolver) item(ctx context.Context, item models.OrderItem) ItemView {
	view := ItemView{QuantityKg: item.QuantityKg}
	if item.FruitID.IsZero() {
		view.FruitName = NoFruitID
		return view
	}

	view.FruitID = item.FruitID.Hex()
	fruit, err := r.fruits.FindOne(ctx, database.ByID(item.FruitID))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			r.log.WithFields(logrus.Fields{
				"fruit_id": view.FruitID,
				"error":    err,
			}).Warn("Fruit lookup failed")
		}
		view.FruitName = UnknownFruit
		return view
	}

	price := fruit.PricePerKg
	view.FruitName = fruit.Name
	view.FruitPrice = &price
	return view
}

func rawID(raw bson.Raw) string {
	v, err := raw.LookupErr("_id")
	if err != nil {
		return ""
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return v.String()
}
