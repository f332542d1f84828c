package services_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	inventorydb "ms-hotel/internal/inventory/db"
	"ms-hotel/internal/models"
	"ms-hotel/internal/services"
	servicesdb "ms-hotel/internal/services/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

type fixture struct {
	processor *services.Processor
	inventory *inventorydb.DB
	bunDB     *bun.DB
	booking   *models.Booking
}

func setupFixture(t *testing.T) *fixture {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Booking)(nil),
		(*models.Service)(nil),
		(*models.ServiceOrder)(nil),
		(*models.ServiceRecipe)(nil),
		(*models.InventoryItem)(nil),
		(*models.InventoryUsage)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	booking := &models.Booking{
		CustomerID: 1,
		RoomID:     1,
		CheckIn:    time.Now(),
		Status:     models.BookingCheckedIn,
	}
	_, err = bunDB.NewInsert().Model(booking).Exec(context.Background())
	require.NoError(t, err)

	return &fixture{
		processor: services.NewProcessor(&servicesdb.DB{Bun: bunDB}, nil),
		inventory: &inventorydb.DB{Bun: bunDB},
		bunDB:     bunDB,
		booking:   booking,
	}
}

func TestAddService_RejectsNonPositivePrice(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	err := f.processor.AddService(&models.Service{Name: "spa", Price: 0})
	assert.ErrorIs(t, err, models.ErrInvalidAmount)
}

func TestAttach_SubtotalFromCatalogPrice(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	service := &models.Service{Name: "laundry", Price: 12.5}
	require.NoError(t, f.processor.AddService(service))

	order, err := f.processor.Attach(f.booking.ID, service.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 37.5, order.Subtotal)

	orders, err := f.processor.OrdersForBooking(f.booking.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestAttach_UnknownBooking(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	service := &models.Service{Name: "spa", Price: 40}
	require.NoError(t, f.processor.AddService(service))

	_, err := f.processor.Attach(999, service.ID, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAttach_InvalidQuantity(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	_, err := f.processor.Attach(f.booking.ID, 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = f.processor.Attach(f.booking.ID, 1, -2)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)
}

func TestAttach_RecipeDeductsStock(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	item, err := f.inventory.AddStock("massage oil", 10)
	require.NoError(t, err)

	service := &models.Service{Name: "massage", Price: 60}
	require.NoError(t, f.processor.AddService(service))
	require.NoError(t, f.processor.SetRecipe(service.ID, item.ID, 2))

	// 3 units of the service draw 6 units of oil.
	order, err := f.processor.Attach(f.booking.ID, service.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 180.0, order.Subtotal)

	got, err := f.inventory.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)

	usage, err := f.inventory.ListUsage()
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 6, usage[0].Quantity)
}

func TestAttach_InsufficientStockRollsBackOrder(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	item, err := f.inventory.AddStock("massage oil", 5)
	require.NoError(t, err)

	service := &models.Service{Name: "massage", Price: 60}
	require.NoError(t, f.processor.AddService(service))
	require.NoError(t, f.processor.SetRecipe(service.ID, item.ID, 2))

	// Needs 6 units, only 5 on hand.
	_, err = f.processor.Attach(f.booking.ID, service.ID, 3)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	// Neither the order nor the deduction survives the rollback.
	orders, err := f.processor.OrdersForBooking(f.booking.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	got, err := f.inventory.GetItemByID(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestSetRecipe_Validation(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	service := &models.Service{Name: "minibar", Price: 8}
	require.NoError(t, f.processor.AddService(service))

	err := f.processor.SetRecipe(service.ID, 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	err = f.processor.SetRecipe(999, 1, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetRecipe_Replace(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	itemA, err := f.inventory.AddStock("tea", 100)
	require.NoError(t, err)
	itemB, err := f.inventory.AddStock("coffee", 100)
	require.NoError(t, err)

	service := &models.Service{Name: "room service", Price: 15}
	require.NoError(t, f.processor.AddService(service))

	require.NoError(t, f.processor.SetRecipe(service.ID, itemA.ID, 1))
	require.NoError(t, f.processor.SetRecipe(service.ID, itemB.ID, 3))

	// Second write replaces the binding; coffee is drawn, tea untouched.
	_, err = f.processor.Attach(f.booking.ID, service.ID, 2)
	require.NoError(t, err)

	tea, err := f.inventory.GetItemByID(itemA.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, tea.Quantity)

	coffee, err := f.inventory.GetItemByID(itemB.ID)
	require.NoError(t, err)
	assert.Equal(t, 94, coffee.Quantity)
}

func TestRevenue(t *testing.T) {
	f := setupFixture(t)
	defer f.bunDB.Close()

	service := &models.Service{Name: "laundry", Price: 10}
	require.NoError(t, f.processor.AddService(service))

	revenue, err := f.processor.Revenue()
	require.NoError(t, err)
	assert.Equal(t, 0.0, revenue)

	_, err = f.processor.Attach(f.booking.ID, service.ID, 2)
	require.NoError(t, err)
	_, err = f.processor.Attach(f.booking.ID, service.ID, 3)
	require.NoError(t, err)

	revenue, err = f.processor.Revenue()
	require.NoError(t, err)
	assert.Equal(t, 50.0, revenue)
}
