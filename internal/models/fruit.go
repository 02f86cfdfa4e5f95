package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Fruit struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	BarCode    string             `bson:"barCode" json:"barCode"`
	Name       string             `bson:"name" json:"name"`
	Category   string             `bson:"category" json:"category"`
	PricePerKg float64            `bson:"pricePerKg" json:"pricePerKg"`
	StockKg    int                `bson:"stockKg" json:"stockKg"`
	Country    string             `bson:"country" json:"country"`
	SupplierID primitive.ObjectID `bson:"supplierId" json:"supplierId"`
	IsOrganic  bool               `bson:"isOrganic" json:"isOrganic"`
	ImageURL   string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"` // set by photo upload
}
