package db_test

import (
	"context"
	"database/sql"
	"testing"

	"ms-hotel/internal/inventory/db"
	"ms-hotel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.InventoryItem)(nil),
		(*models.InventoryUsage)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func TestAddStock_NewItemThenTopUp(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	item, err := d.AddStock("towels", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)

	// Same name increments instead of duplicating.
	item, err = d.AddStock("towels", 5)
	require.NoError(t, err)
	assert.Equal(t, 15, item.Quantity)

	items, err := d.ListItems()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestConsumeStock_GuardedAgainstOverdraw(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	item, err := d.AddStock("soap", 10)
	require.NoError(t, err)

	// More than available fails and leaves the quantity untouched.
	err = d.ConsumeStock(item.ID, 12)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	got, err := d.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.Quantity)

	// A valid draw decrements and records usage.
	err = d.ConsumeStock(item.ID, 5)
	require.NoError(t, err)

	got, err = d.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	usage, err := d.ListUsage()
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, item.ID, usage[0].ItemID)
	assert.Equal(t, 5, usage[0].Quantity)
}

func TestConsumeStock_ExactBalance(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	item, err := d.AddStock("shampoo", 4)
	require.NoError(t, err)

	err = d.ConsumeStock(item.ID, 4)
	require.NoError(t, err)

	got, err := d.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	// Nothing left.
	err = d.ConsumeStock(item.ID, 1)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
}

func TestLowStock(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := d.AddStock("towels", 2)
	require.NoError(t, err)
	_, err = d.AddStock("soap", 50)
	require.NoError(t, err)
	_, err = d.AddStock("shampoo", 5)
	require.NoError(t, err)

	low, err := d.LowStock(5)
	require.NoError(t, err)
	require.Len(t, low, 2)

	names := []string{low[0].Name, low[1].Name}
	assert.Contains(t, names, "towels")
	assert.Contains(t, names, "shampoo")
}

func TestGetItemByID_NotFound(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := d.GetItemByID(404)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
