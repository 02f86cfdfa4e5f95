package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Customer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CustomerID BusinessID         `bson:"customerId" json:"customerId"` // join key for orders, not unique-enforced
	Name       string             `bson:"name" json:"name"`
	Phone      string             `bson:"phone" json:"phone"`
	Address    string             `bson:"address" json:"address"`
	IsMember   bool               `bson:"isMember" json:"isMember"`
	UpdatedAt  time.Time          `bson:"updated_at,omitempty" json:"updated_at"`
}
