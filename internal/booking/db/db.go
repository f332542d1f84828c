package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ms-hotel/internal/models"
	"time"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// wrap maps driver errors onto the core taxonomy.
func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%w: %v", models.ErrStorage, err)
}

// ---------------- ROOMS ----------------

func (d *DB) CreateRoom(room *models.Room) error {
	if _, err := d.Bun.NewInsert().Model(room).Exec(context.Background()); err != nil {
		return wrap(err)
	}
	return nil
}

func (d *DB) GetRoomByID(id int64) (*models.Room, error) {
	var room models.Room
	err := d.Bun.NewSelect().
		Model(&room).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &room, nil
}

func (d *DB) ListRooms() ([]models.Room, error) {
	var rooms []models.Room
	err := d.Bun.NewSelect().
		Model(&rooms).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return rooms, nil
}

// ---------------- MAINTENANCE ----------------

// ReportMaintenance opens the issue and takes the room out of service in one
// transaction.
func (d *DB) ReportMaintenance(issue *models.MaintenanceIssue) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(issue).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*models.Room)(nil)).
			Set("status = ?", models.RoomMaintenance).
			Where("id = ?", issue.RoomID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return wrap(err)
	}
	return nil
}

// ResolveMaintenance closes the issue and returns the room to service.
func (d *DB) ResolveMaintenance(issue *models.MaintenanceIssue) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.MaintenanceIssue)(nil)).
			Set("status = ?", models.MaintenanceClosed).
			Where("id = ?", issue.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.Room)(nil)).
			Set("status = ?", models.RoomAvailable).
			Where("id = ?", issue.RoomID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return wrap(err)
	}
	return nil
}

func (d *DB) GetMaintenanceByID(id int64) (*models.MaintenanceIssue, error) {
	var issue models.MaintenanceIssue
	err := d.Bun.NewSelect().
		Model(&issue).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &issue, nil
}

func (d *DB) ListOpenMaintenance() ([]models.MaintenanceIssue, error) {
	var issues []models.MaintenanceIssue
	err := d.Bun.NewSelect().
		Model(&issues).
		Where("status = ?", models.MaintenanceOpen).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return issues, nil
}

// ---------------- CUSTOMERS ----------------

func (d *DB) CreateCustomer(customer *models.Customer) error {
	if _, err := d.Bun.NewInsert().Model(customer).Exec(context.Background()); err != nil {
		return wrap(err)
	}
	return nil
}

func (d *DB) GetCustomerByID(id int64) (*models.Customer, error) {
	var customer models.Customer
	err := d.Bun.NewSelect().
		Model(&customer).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &customer, nil
}

func (d *DB) ListCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := d.Bun.NewSelect().
		Model(&customers).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return customers, nil
}

// ---------------- BOOKINGS ----------------

func (d *DB) GetBookingByID(id int64) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &booking, nil
}

func (d *DB) ListBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return bookings, nil
}

// countConflicts runs the overlap test against active bookings. An open
// check-out, on either side, occupies the room indefinitely.
func countConflicts(ctx context.Context, idb bun.IDB, roomID int64, start time.Time, end *time.Time) (int, error) {
	q := idb.NewSelect().
		Model((*models.Booking)(nil)).
		Where("room_id = ?", roomID).
		Where("status IN (?)", bun.In([]models.BookingStatus{models.BookingReserved, models.BookingCheckedIn})).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("check_out IS NULL").WhereOr("check_out >= ?", start)
		})
	if end != nil {
		q = q.Where("check_in <= ?", *end)
	}
	return q.Count(ctx)
}

// IsRoomAvailable is a pure read; the authoritative conflict check is
// repeated inside CreateBooking's transaction.
func (d *DB) IsRoomAvailable(roomID int64, start, end time.Time) (bool, error) {
	count, err := countConflicts(context.Background(), d.Bun, roomID, start, &end)
	if err != nil {
		return false, wrap(err)
	}
	return count == 0, nil
}

// CreateBooking inserts the booking and flips the room to reserved in one
// transaction, re-checking availability inside it so that two concurrent
// callers cannot both reserve the same room.
func (d *DB) CreateBooking(booking *models.Booking) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := countConflicts(ctx, tx, booking.RoomID, booking.CheckIn, booking.CheckOut)
		if err != nil {
			return err
		}
		if count > 0 {
			return models.ErrRoomUnavailable
		}
		if _, err := tx.NewInsert().Model(booking).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.Room)(nil)).
			Set("status = ?", models.RoomReserved).
			Where("id = ?", booking.RoomID).
			Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrRoomUnavailable) {
			return err
		}
		return wrap(err)
	}
	return nil
}

// CheckInBooking records the actual arrival time and occupies the room.
func (d *DB) CheckInBooking(booking *models.Booking, at time.Time) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.Booking)(nil)).
			Set("status = ?", models.BookingCheckedIn).
			Set("check_in = ?", at).
			Where("id = ?", booking.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.Room)(nil)).
			Set("status = ?", models.RoomOccupied).
			Where("id = ?", booking.RoomID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return wrap(err)
	}
	return nil
}

// CheckOutBooking finalizes the total, records departure and releases the room.
func (d *DB) CheckOutBooking(booking *models.Booking, at time.Time, total float64) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model((*models.Booking)(nil)).
			Set("status = ?", models.BookingCheckedOut).
			Set("check_out = ?", at).
			Set("total = ?", total).
			Where("id = ?", booking.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.Room)(nil)).
			Set("status = ?", models.RoomAvailable).
			Where("id = ?", booking.RoomID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return wrap(err)
	}
	return nil
}

// CancelBooking records the cancellation with its refund and releases the
// room. The room reversion is mandatory here, not optional.
func (d *DB) CancelBooking(booking *models.Booking, cancellation *models.Cancellation) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(cancellation).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewUpdate().
			Model((*models.Booking)(nil)).
			Set("status = ?", models.BookingCancelled).
			Where("id = ?", booking.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		_, err = tx.NewUpdate().
			Model((*models.Room)(nil)).
			Set("status = ?", models.RoomAvailable).
			Where("id = ?", booking.RoomID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return wrap(err)
	}
	return nil
}

// SumServiceSubtotals totals the service orders attached to a booking.
func (d *DB) SumServiceSubtotals(bookingID int64) (float64, error) {
	var sum sql.NullFloat64
	err := d.Bun.NewSelect().
		ColumnExpr("SUM(subtotal)").
		Table("service_orders").
		Where("booking_id = ?", bookingID).
		Scan(context.Background(), &sum)
	if err != nil {
		return 0, wrap(err)
	}
	return sum.Float64, nil
}

// ---------------- REPORTS ----------------

// OccupancyRate returns the share of rooms not currently available, in percent.
func (d *DB) OccupancyRate() (float64, error) {
	ctx := context.Background()
	total, err := d.Bun.NewSelect().Model((*models.Room)(nil)).Count(ctx)
	if err != nil {
		return 0, wrap(err)
	}
	if total == 0 {
		return 0, nil
	}
	occupied, err := d.Bun.NewSelect().
		Model((*models.Room)(nil)).
		Where("status != ?", models.RoomAvailable).
		Count(ctx)
	if err != nil {
		return 0, wrap(err)
	}
	return float64(occupied) / float64(total) * 100, nil
}

// BookingRevenue sums the totals of checked-out bookings.
func (d *DB) BookingRevenue() (float64, error) {
	var sum sql.NullFloat64
	err := d.Bun.NewSelect().
		ColumnExpr("SUM(total)").
		Table("bookings").
		Where("status = ?", models.BookingCheckedOut).
		Scan(context.Background(), &sum)
	if err != nil {
		return 0, wrap(err)
	}
	return sum.Float64, nil
}
