package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fruit-store-api-server/internal/models"
)

// Collection names.
const (
	CustomersCollection = "customers"
	FruitsCollection    = "fruits"
	SuppliersCollection = "suppliers"
	OrdersCollection    = "orders"
)

// Store groups the four collections. It is built once at startup and passed
// to every handler.
type Store struct {
	Customers Collection[models.Customer]
	Fruits    Collection[models.Fruit]
	Suppliers Collection[models.Supplier]
	Orders    Collection[models.Order]

	// Ping checks connectivity. Nil means always reachable.
	Ping func(ctx context.Context) error
}

// NewStore builds a Store over db.
func NewStore(db *mongo.Database) *Store {
	return &Store{
		Customers: NewMongoCollection[models.Customer](db.Collection(CustomersCollection)),
		Fruits:    NewMongoCollection[models.Fruit](db.Collection(FruitsCollection)),
		Suppliers: NewMongoCollection[models.Supplier](db.Collection(SuppliersCollection)),
		Orders:    NewMongoCollection[models.Order](db.Collection(OrdersCollection)),
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
	}
}

// CheckConnection pings the database.
func (s *Store) CheckConnection(ctx context.Context) error {
	if s.Ping == nil {
		return nil
	}
	return s.Ping(ctx)
}

// UnknownSupplier is shown for a fruit whose supplier cannot be found.
const UnknownSupplier = "Unknown"

// SupplierName returns the name of the supplier with the given id, or
// UnknownSupplier when it cannot be loaded.
func (s *Store) SupplierName(ctx context.Context, id primitive.ObjectID) string {
	supplier, err := s.Suppliers.FindOne(ctx, ByID(id))
	if err != nil {
		return UnknownSupplier
	}
	return supplier.Name
}
