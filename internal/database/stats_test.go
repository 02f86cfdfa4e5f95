package database_test

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruit-store-api-server/internal/database/dbtest"
	"fruit-store-api-server/internal/models"
)

func TestStoreStats(t *testing.T) {
	store, mem := dbtest.NewStore()
	mem.Customers.Seed(models.Customer{CustomerID: "C1", IsMember: true}, models.Customer{CustomerID: "C2"})
	mem.Fruits.Seed(models.Fruit{Name: "Kiwi", IsOrganic: true}, models.Fruit{Name: "Fig"}, models.Fruit{Name: "Lime"})
	mem.Suppliers.Seed(models.Supplier{Name: "A", Active: true}, models.Supplier{Name: "B"})
	mem.Orders.Seed(models.Order{Status: models.StatusPending}, models.Order{Status: "Delivered"})

	st, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.CustomersCount)
	assert.EqualValues(t, 1, st.MembersCount)
	assert.EqualValues(t, 3, st.FruitsCount)
	assert.EqualValues(t, 1, st.OrganicFruits)
	assert.EqualValues(t, 1, st.SuppliersCount)
	assert.EqualValues(t, 2, st.TotalSuppliers)
	assert.EqualValues(t, 2, st.OrdersCount)
	assert.EqualValues(t, 1, st.PendingOrders)

	mem.Orders.Err = errors.New("timeout")
	_, err = store.Stats(context.Background())
	assert.Error(t, err)
}

func TestSupplierName(t *testing.T) {
	store, mem := dbtest.NewStore()
	id := mem.Suppliers.Seed(models.Supplier{Name: "Sunny Orchards"})[0]

	assert.Equal(t, "Sunny Orchards", store.SupplierName(context.Background(), id))
	mem.Suppliers.Err = errors.New("down")
	assert.Equal(t, "Unknown", store.SupplierName(context.Background(), id))
}
