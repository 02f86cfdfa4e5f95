package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Supplier struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Phone          string             `bson:"phone" json:"phone"`
	Location       string             `bson:"location" json:"location"`
	FruitsSupplied []string           `bson:"fruitsSupplied" json:"fruitsSupplied"`
	Active         bool               `bson:"active" json:"active"`
}

// SplitFruitList turns the comma separated form field into a clean list.
func SplitFruitList(s string) []string {
	fruits := []string{}
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fruits = append(fruits, f)
		}
	}
	return fruits
}
