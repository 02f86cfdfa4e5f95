// Package orders holds the only workflows that span collections: creating an
// order from fruit prices and stock, and resolving stored orders into a
// display form joined with customers and fruits.
package orders

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fruit-store-api-server/internal/apperr"
	"fruit-store-api-server/internal/database"
	"fruit-store-api-server/internal/models"
)

// Event names published on order writes.
const (
	EventCreated = "order.created"
	EventUpdated = "order.updated"
	EventDeleted = "order.deleted"
)

// Publisher receives order events. The websocket hub implements it.
type Publisher interface {
	Publish(event string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// ItemRequest is one requested line item.
type ItemRequest struct {
	FruitID    string
	QuantityKg float64
}

// CreateRequest is the input of Service.Create. CustomerID is the customer's
// business identifier.
type CreateRequest struct {
	CustomerID string
	Items      []ItemRequest
	Status     string
}

// CreateResult is a persisted order and its exact total.
type CreateResult struct {
	Order *models.Order
	Total decimal.Decimal
}

// Service creates and mutates orders.
type Service struct {
	customers database.Collection[models.Customer]
	fruits    database.Collection[models.Fruit]
	orders    database.Collection[models.Order]
	events    Publisher
	now       func() time.Time
}

// NewService builds a Service over store. events may be nil.
func NewService(store *database.Store, events Publisher) *Service {
	if events == nil {
		events = nopPublisher{}
	}
	return &Service{
		customers: store.Customers,
		fruits:    store.Fruits,
		orders:    store.Orders,
		events:    events,
		now:       time.Now,
	}
}

// Create validates and stores a new order.
//
// Each fruit is looked up, its stock compared with the requested quantity and
// its price accumulated; then the customer is resolved by business
// identifier. Nothing is written unless every check passes.
//
// Stock is only read, never decremented, so two concurrent orders can both
// pass the check against the same stock value. Each item is also checked on
// its own: two items for the same fruit are not summed before the check.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	// The business identifier is matched and stored verbatim.
	customerID := req.CustomerID
	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.InvalidInputf("customerId is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.InvalidInputf("Order must contain at least one item")
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, item := range req.Items {
		fruitID, err := primitive.ObjectIDFromHex(item.FruitID)
		if err != nil {
			return nil, apperr.InvalidInputf("Invalid fruit ID %q", item.FruitID)
		}
		if item.QuantityKg <= 0 {
			return nil, apperr.InvalidInputf("Quantity for fruit %s must be greater than 0", item.FruitID)
		}

		fruit, err := s.fruits.FindOne(ctx, database.ByID(fruitID))
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, apperr.NotFoundf("Fruit with ID %s not found", item.FruitID)
			}
			return nil, apperr.Wrap(err, "find fruit")
		}

		qty := decimal.NewFromFloat(item.QuantityKg)
		if qty.GreaterThan(decimal.NewFromInt(int64(fruit.StockKg))) {
			return nil, apperr.InsufficientStockf("Insufficient stock for %s. Available: %dkg", fruit.Name, fruit.StockKg)
		}

		total = total.Add(decimal.NewFromFloat(fruit.PricePerKg).Mul(qty))
		items = append(items, models.OrderItem{
			FruitID:    fruitID,
			QuantityKg: item.QuantityKg,
		})
	}
	total = RoundTotal(total)

	if _, err := s.customers.FindOne(ctx, bson.M{"customerId": customerID}); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFoundf("Customer not found")
		}
		return nil, apperr.Wrap(err, "find customer")
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.StatusPending
	}

	order := &models.Order{
		OrderDate:   s.now().UTC(),
		CustomerID:  models.NewCustomerRef(customerID),
		Items:       items,
		TotalAmount: total.InexactFloat64(),
		Status:      status,
	}
	id, err := s.orders.InsertOne(ctx, order)
	if err != nil {
		return nil, apperr.Wrap(err, "insert order")
	}
	order.ID = id

	s.events.Publish(EventCreated, order)
	return &CreateResult{Order: order, Total: total}, nil
}

// RoundTotal rounds half to even at two decimal places.
func RoundTotal(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// UpdateStatus changes an order's status. It is the only mutation an order
// allows after creation.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}
	status = strings.TrimSpace(status)
	if status == "" {
		return apperr.InvalidInputf("No update data provided")
	}

	matched, err := s.orders.UpdateOne(ctx, database.ByID(oid), bson.M{
		"status":     status,
		"updated_at": s.now().UTC(),
	})
	if err != nil {
		return apperr.Wrap(err, "update order")
	}
	if matched == 0 {
		return apperr.NotFoundf("Order not found")
	}

	s.events.Publish(EventUpdated, map[string]string{"_id": id, "status": status})
	return nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.orders.DeleteOne(ctx, database.ByID(oid))
	if err != nil {
		return apperr.Wrap(err, "delete order")
	}
	if deleted == 0 {
		return apperr.NotFoundf("Order not found")
	}

	s.events.Publish(EventDeleted, map[string]string{"_id": id})
	return nil
}
