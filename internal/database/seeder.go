// server/internal/database/seeder.go
package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/models"
)

// SeedDemoData fills an empty store with one supplier, a handful of fruits
// and a member customer so the pages have something to show. It does nothing
// when any fruit already exists.
func SeedDemoData(ctx context.Context, store *Store, log logrus.FieldLogger) error {
	count, err := store.Fruits.Count(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("Fruits already present. Seeding skipped.")
		return nil
	}

	log.Info("Store is empty. Seeding demo data...")

	supplierID, err := store.Suppliers.InsertOne(ctx, &models.Supplier{
		Name:           "Sunny Orchards",
		Phone:          "+1-555-0100",
		Location:       "Valencia",
		FruitsSupplied: []string{"Orange", "Mandarin", "Lemon"},
		Active:         true,
	})
	if err != nil {
		return err
	}

	fruits := []models.Fruit{
		{BarCode: "8400000000011", Name: "Orange", Category: "Citrus", PricePerKg: 2.5, StockKg: 120, Country: "Spain", SupplierID: supplierID},
		{BarCode: "8400000000028", Name: "Mandarin", Category: "Citrus", PricePerKg: 3.1, StockKg: 80, Country: "Spain", SupplierID: supplierID, IsOrganic: true},
		{BarCode: "8400000000035", Name: "Lemon", Category: "Citrus", PricePerKg: 1.9, StockKg: 45, Country: "Spain", SupplierID: supplierID},
	}
	for i := range fruits {
		if _, err := store.Fruits.InsertOne(ctx, &fruits[i]); err != nil {
			return err
		}
	}

	_, err = store.Customers.InsertOne(ctx, &models.Customer{
		CustomerID: "C1",
		Name:       "Demo Customer",
		Phone:      "+1-555-0199",
		Address:    "1 Market Street",
		IsMember:   true,
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	log.WithField("fruits", len(fruits)).Info("Demo data seeded successfully.")
	return nil
}
