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

func wrap(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return fmt.Errorf("%w: %v", models.ErrStorage, err)
}

func (d *DB) GetItemByID(id int64) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &item, nil
}

func (d *DB) ListItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := d.Bun.NewSelect().
		Model(&items).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return items, nil
}

// AddStock increments the named item, creating it when absent.
func (d *DB) AddStock(name string, quantity int) (*models.InventoryItem, error) {
	ctx := context.Background()
	var item models.InventoryItem
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&item).
			Where("name = ?", name).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			item = models.InventoryItem{Name: name, Quantity: quantity}
			_, err := tx.NewInsert().Model(&item).Exec(ctx)
			return err
		}
		if err != nil {
			return err
		}
		item.Quantity += quantity
		_, err = tx.NewUpdate().
			Model((*models.InventoryItem)(nil)).
			Set("quantity = ?", item.Quantity).
			Where("id = ?", item.ID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return &item, nil
}

// ConsumeStock decrements the item and appends the usage record in one
// transaction. The guarded update keeps the quantity from ever going
// negative, even under concurrent consumers.
func (d *DB) ConsumeStock(itemID int64, quantity int) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return consumeInTx(ctx, tx, itemID, quantity)
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			return err
		}
		return wrap(err)
	}
	return nil
}

// consumeInTx is shared with the service-order storage layer so a recipe
// deduction joins the order insert's transaction.
func consumeInTx(ctx context.Context, tx bun.Tx, itemID int64, quantity int) error {
	res, err := tx.NewUpdate().
		Model((*models.InventoryItem)(nil)).
		Set("quantity = quantity - ?", quantity).
		Where("id = ?", itemID).
		Where("quantity >= ?", quantity).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrInsufficientStock
	}
	usage := &models.InventoryUsage{ItemID: itemID, Quantity: quantity, UsedOn: time.Now()}
	_, err = tx.NewInsert().Model(usage).Exec(ctx)
	return err
}

// ConsumeInTx exposes the guarded deduction to other storage layers that
// hold their own open transaction.
func ConsumeInTx(ctx context.Context, tx bun.Tx, itemID int64, quantity int) error {
	return consumeInTx(ctx, tx, itemID, quantity)
}

// LowStock lists items at or below the threshold.
func (d *DB) LowStock(threshold int) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("quantity <= ?", threshold).
		Order("quantity").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return items, nil
}

// ListUsage returns the consumption audit trail, newest first.
func (d *DB) ListUsage() ([]models.InventoryUsage, error) {
	var usage []models.InventoryUsage
	err := d.Bun.NewSelect().
		Model(&usage).
		Order("used_on DESC").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return usage, nil
}
