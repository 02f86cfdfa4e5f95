package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"fruit-store-api-server/internal/models"
)

// Stats are the dashboard counters.
type Stats struct {
	CustomersCount int64 `json:"customers_count"`
	FruitsCount    int64 `json:"fruits_count"`
	// SuppliersCount counts active suppliers only.
	SuppliersCount int64 `json:"suppliers_count"`
	OrdersCount    int64 `json:"orders_count"`
	TotalSuppliers int64 `json:"total_suppliers"`
	PendingOrders  int64 `json:"pending_orders"`
	OrganicFruits  int64 `json:"organic_fruits"`
	MembersCount   int64 `json:"members_count"`
}

type counter struct {
	count  func(ctx context.Context, filter bson.M) (int64, error)
	filter bson.M
	dst    *int64
}

// Stats counts documents for the dashboard. The first failing count aborts.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counters := []counter{
		{s.Customers.Count, bson.M{}, &st.CustomersCount},
		{s.Fruits.Count, bson.M{}, &st.FruitsCount},
		{s.Suppliers.Count, bson.M{"active": true}, &st.SuppliersCount},
		{s.Orders.Count, bson.M{}, &st.OrdersCount},
		{s.Suppliers.Count, bson.M{}, &st.TotalSuppliers},
		{s.Orders.Count, bson.M{"status": models.StatusPending}, &st.PendingOrders},
		{s.Fruits.Count, bson.M{"isOrganic": true}, &st.OrganicFruits},
		{s.Customers.Count, bson.M{"isMember": true}, &st.MembersCount},
	}
	for _, c := range counters {
		n, err := c.count(ctx, c.filter)
		if err != nil {
			return Stats{}, err
		}
		*c.dst = n
	}
	return st, nil
}
