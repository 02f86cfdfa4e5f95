package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusPending is the status given to orders created without one.
const StatusPending = "Pending"

// OrderItem is embedded in an order. The price is not stored, so an order
// is re-priced from the fruit whenever it is displayed.
type OrderItem struct {
	FruitID    primitive.ObjectID `bson:"fruitId" json:"fruitId"`
	QuantityKg float64            `bson:"quantityKg" json:"quantityKg"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderDate   time.Time          `bson:"orderDate" json:"orderDate"`
	CustomerID  CustomerRef        `bson:"customerId" json:"customerId"` // business identifier, see CustomerRef
	Items       []OrderItem        `bson:"items" json:"items"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
