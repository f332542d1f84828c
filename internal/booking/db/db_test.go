package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-hotel/internal/booking/db"
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
		(*models.Room)(nil),
		(*models.Customer)(nil),
		(*models.Booking)(nil),
		(*models.Cancellation)(nil),
		(*models.ServiceOrder)(nil),
		(*models.MaintenanceIssue)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedRoomAndCustomer(t *testing.T, d *db.DB) (*models.Room, *models.Customer) {
	room := &models.Room{Number: "101", Type: "double", Price: 120, Status: models.RoomAvailable}
	require.NoError(t, d.CreateRoom(room))

	customer := &models.Customer{Name: "Nadia Perera", Phone: "0771234567", Email: "nadia@example.com"}
	require.NoError(t, d.CreateCustomer(customer))

	return room, customer
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 14, 0, 0, 0, time.UTC)
}

func TestIsRoomAvailable_OverlapWindows(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, customer := seedRoomAndCustomer(t, d)

	checkOut := date(2026, 3, 14)
	booking := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 3, 10),
		CheckOut:   &checkOut,
		Status:     models.BookingReserved,
	}
	require.NoError(t, d.CreateBooking(booking))

	// Window fully inside the stay conflicts.
	available, err := d.IsRoomAvailable(room.ID, date(2026, 3, 11), date(2026, 3, 12))
	require.NoError(t, err)
	assert.False(t, available)

	// Window touching the checkout day still conflicts.
	available, err = d.IsRoomAvailable(room.ID, date(2026, 3, 14), date(2026, 3, 16))
	require.NoError(t, err)
	assert.False(t, available)

	// Window entirely after the stay is free.
	available, err = d.IsRoomAvailable(room.ID, date(2026, 3, 15), date(2026, 3, 17))
	require.NoError(t, err)
	assert.True(t, available)

	// Window entirely before the stay is free.
	available, err = d.IsRoomAvailable(room.ID, date(2026, 3, 1), date(2026, 3, 9))
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsRoomAvailable_OpenCheckoutBlocksEverything(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, customer := seedRoomAndCustomer(t, d)

	// No checkout date: the guest may stay indefinitely.
	booking := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 3, 10),
		Status:     models.BookingReserved,
	}
	require.NoError(t, d.CreateBooking(booking))

	available, err := d.IsRoomAvailable(room.ID, date(2026, 3, 20), date(2026, 3, 22))
	require.NoError(t, err)
	assert.False(t, available, "open-ended stay should block any later window")

	available, err = d.IsRoomAvailable(room.ID, date(2026, 3, 1), date(2026, 3, 5))
	require.NoError(t, err)
	assert.True(t, available, "window before check-in should be free")
}

func TestCreateBooking_ConflictRejected(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, customer := seedRoomAndCustomer(t, d)

	checkOut := date(2026, 4, 5)
	first := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 4, 1),
		CheckOut:   &checkOut,
		Status:     models.BookingReserved,
	}
	require.NoError(t, d.CreateBooking(first))

	// Room flips to reserved on booking.
	updated, err := d.GetRoomByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomReserved, updated.Status)

	secondOut := date(2026, 4, 6)
	second := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 4, 4),
		CheckOut:   &secondOut,
		Status:     models.BookingReserved,
	}
	err = d.CreateBooking(second)
	assert.ErrorIs(t, err, models.ErrRoomUnavailable)

	bookings, err := d.ListBookings()
	require.NoError(t, err)
	assert.Len(t, bookings, 1, "conflicting booking must not be persisted")
}

func TestBookingLifecycle_RoomStatusFollows(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, customer := seedRoomAndCustomer(t, d)

	checkOut := date(2026, 5, 3)
	booking := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 5, 1),
		CheckOut:   &checkOut,
		Status:     models.BookingReserved,
	}
	require.NoError(t, d.CreateBooking(booking))

	// Check in.
	require.NoError(t, d.CheckInBooking(booking, date(2026, 5, 1)))
	got, err := d.GetBookingByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCheckedIn, got.Status)

	r, err := d.GetRoomByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomOccupied, r.Status)

	// Check out with a computed total.
	require.NoError(t, d.CheckOutBooking(booking, date(2026, 5, 3), 240))
	got, err = d.GetBookingByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCheckedOut, got.Status)
	assert.Equal(t, 240.0, got.Total)

	r, err = d.GetRoomByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, r.Status)
}

func TestCancelBooking_WritesCancellationAndFreesRoom(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, customer := seedRoomAndCustomer(t, d)

	booking := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 6, 1),
		Status:     models.BookingReserved,
		Total:      500,
	}
	require.NoError(t, d.CreateBooking(booking))

	cancellation := &models.Cancellation{
		BookingID: booking.ID,
		Reason:    "change of plans",
		Refund:    400,
	}
	require.NoError(t, d.CancelBooking(booking, cancellation))

	got, err := d.GetBookingByID(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	r, err := d.GetRoomByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, r.Status)

	var stored models.Cancellation
	err = bunDB.NewSelect().Model(&stored).Where("booking_id = ?", booking.ID).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 400.0, stored.Refund)
}

func TestReportMaintenance_TakesRoomOutOfService(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, _ := seedRoomAndCustomer(t, d)

	issue := &models.MaintenanceIssue{RoomID: room.ID, Issue: "broken AC", Status: models.MaintenanceOpen}
	require.NoError(t, d.ReportMaintenance(issue))

	r, err := d.GetRoomByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenance, r.Status)

	open, err := d.ListOpenMaintenance()
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "broken AC", open[0].Issue)
}

func TestResolveMaintenance_ReturnsRoomToService(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, _ := seedRoomAndCustomer(t, d)

	issue := &models.MaintenanceIssue{RoomID: room.ID, Issue: "leaking tap", Status: models.MaintenanceOpen}
	require.NoError(t, d.ReportMaintenance(issue))
	require.NoError(t, d.ResolveMaintenance(issue))

	got, err := d.GetMaintenanceByID(issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MaintenanceClosed, got.Status)

	r, err := d.GetRoomByID(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, r.Status)

	open, err := d.ListOpenMaintenance()
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestGetMaintenanceByID_NotFound(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := d.GetMaintenanceByID(4242)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetBookingByID_NotFound(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := d.GetBookingByID(9999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSumServiceSubtotals(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	room, customer := seedRoomAndCustomer(t, d)
	booking := &models.Booking{
		CustomerID: customer.ID,
		RoomID:     room.ID,
		CheckIn:    date(2026, 7, 1),
		Status:     models.BookingReserved,
	}
	require.NoError(t, d.CreateBooking(booking))

	// No orders yet.
	sum, err := d.SumServiceSubtotals(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum)

	orders := []models.ServiceOrder{
		{BookingID: booking.ID, ServiceID: 1, Quantity: 2, Subtotal: 30},
		{BookingID: booking.ID, ServiceID: 2, Quantity: 1, Subtotal: 45.5},
	}
	_, err = bunDB.NewInsert().Model(&orders).Exec(context.Background())
	require.NoError(t, err)

	sum, err = d.SumServiceSubtotals(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.5, sum)
}
