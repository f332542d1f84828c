package inventory_test

import (
	"context"
	"database/sql"
	"testing"

	"ms-hotel/internal/inventory"
	"ms-hotel/internal/inventory/db"
	"ms-hotel/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupLedger(t *testing.T) (*inventory.Ledger, *bun.DB) {
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

	return inventory.NewLedger(&db.DB{Bun: bunDB}, nil), bunDB
}

func TestLedgerAdd_ZeroRegistersEmptyItem(t *testing.T) {
	ledger, bunDB := setupLedger(t)
	defer bunDB.Close()

	item, err := ledger.Add("minibar snacks", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, item.Quantity)
}

func TestLedgerAdd_NegativeRejected(t *testing.T) {
	ledger, bunDB := setupLedger(t)
	defer bunDB.Close()

	_, err := ledger.Add("towels", -1)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}

func TestLedgerConsume_Validation(t *testing.T) {
	ledger, bunDB := setupLedger(t)
	defer bunDB.Close()

	item, err := ledger.Add("soap", 10)
	require.NoError(t, err)

	_, err = ledger.Consume(item.ID, 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = ledger.Consume(item.ID, -3)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = ledger.Consume(item.ID, 12)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	got, err := ledger.Consume(item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)

	usage, err := ledger.UsageReport()
	require.NoError(t, err)
	assert.Len(t, usage, 1)
}

func TestLedgerConsume_UnknownItem(t *testing.T) {
	ledger, bunDB := setupLedger(t)
	defer bunDB.Close()

	_, err := ledger.Consume(404, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
