package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ms-hotel/internal/models"

	inventorydb "ms-hotel/internal/inventory/db"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%w: %v", models.ErrStorage, err)
}

// ---------------- CATALOG ----------------

func (d *DB) CreateService(service *models.Service) error {
	if _, err := d.Bun.NewInsert().Model(service).Exec(context.Background()); err != nil {
		return wrap(err)
	}
	return nil
}

func (d *DB) GetServiceByID(id int64) (*models.Service, error) {
	var service models.Service
	err := d.Bun.NewSelect().
		Model(&service).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &service, nil
}

func (d *DB) ListServices() ([]models.Service, error) {
	var services []models.Service
	err := d.Bun.NewSelect().
		Model(&services).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return services, nil
}

// ---------------- RECIPES ----------------

func (d *DB) SetRecipe(recipe *models.ServiceRecipe) error {
	_, err := d.Bun.NewInsert().
		Model(recipe).
		On("CONFLICT (service_id) DO UPDATE").
		Set("item_id = EXCLUDED.item_id").
		Set("units = EXCLUDED.units").
		Exec(context.Background())
	if err != nil {
		return wrap(err)
	}
	return nil
}

// GetRecipe returns nil when the service consumes no stock.
func (d *DB) GetRecipe(serviceID int64) (*models.ServiceRecipe, error) {
	var recipe models.ServiceRecipe
	err := d.Bun.NewSelect().
		Model(&recipe).
		Where("service_id = ?", serviceID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err)
	}
	return &recipe, nil
}

// ---------------- ORDERS ----------------

func (d *DB) BookingExists(id int64) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Count(context.Background())
	if err != nil {
		return false, wrap(err)
	}
	return count > 0, nil
}

// AttachOrder inserts the service order and, when the service carries a
// recipe, draws the stock inside the same transaction. Insufficient stock
// rolls the whole attach back.
func (d *DB) AttachOrder(order *models.ServiceOrder, recipe *models.ServiceRecipe) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		if recipe != nil {
			return inventorydb.ConsumeInTx(ctx, tx, recipe.ItemID, recipe.Units*order.Quantity)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			return err
		}
		return wrap(err)
	}
	return nil
}

func (d *DB) ListOrdersByBooking(bookingID int64) ([]models.ServiceOrder, error) {
	var orders []models.ServiceOrder
	err := d.Bun.NewSelect().
		Model(&orders).
		Where("booking_id = ?", bookingID).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return orders, nil
}

// ServiceRevenue sums every service-order subtotal.
func (d *DB) ServiceRevenue() (float64, error) {
	var sum sql.NullFloat64
	err := d.Bun.NewSelect().
		ColumnExpr("SUM(subtotal)").
		Table("service_orders").
		Scan(context.Background(), &sum)
	if err != nil {
		return 0, wrap(err)
	}
	return sum.Float64, nil
}
