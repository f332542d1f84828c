package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ms-hotel/internal/models"

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

func (d *DB) CreateInvoice(invoice *models.Invoice) error {
	if _, err := d.Bun.NewInsert().Model(invoice).Exec(context.Background()); err != nil {
		return wrap(err)
	}
	return nil
}

func (d *DB) GetInvoiceByID(id int64) (*models.Invoice, error) {
	var invoice models.Invoice
	err := d.Bun.NewSelect().
		Model(&invoice).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return &invoice, nil
}

func (d *DB) ListInvoices() ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := d.Bun.NewSelect().
		Model(&invoices).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return invoices, nil
}

// UpdateInvoiceAmount overwrites the amount in place (tax application).
func (d *DB) UpdateInvoiceAmount(id int64, amount float64) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Invoice)(nil)).
		Set("amount = ?", amount).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return wrap(err)
	}
	return nil
}

// RecordPayment appends the receipt and reconciles the invoice in one
// transaction. The paid total is incremented in SQL, not written from a
// prior read, so the HTTP pay path and the card-payment consumer can race
// on one invoice without losing an update. Payment rows are never touched
// again after this insert.
func (d *DB) RecordPayment(payment *models.Payment) (*models.Invoice, error) {
	ctx := context.Background()
	var invoice models.Invoice
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Invoice)(nil)).
			Set("paid = paid + ?", payment.Amount).
			Where("id = ?", payment.InvoiceID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if rows, err := res.RowsAffected(); err == nil && rows == 0 {
			return models.ErrNotFound
		}

		// The row lock from the update holds until commit; the status
		// derives from the incremented total.
		if err := tx.NewSelect().
			Model(&invoice).
			Where("id = ?", payment.InvoiceID).
			Limit(1).
			Scan(ctx); err != nil {
			return err
		}
		if invoice.Paid >= invoice.Amount {
			invoice.Status = models.InvoicePaid
		} else {
			invoice.Status = models.InvoicePartial
		}
		if _, err := tx.NewUpdate().
			Model((*models.Invoice)(nil)).
			Set("status = ?", invoice.Status).
			Where("id = ?", invoice.ID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewInsert().Model(payment).Exec(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, wrap(err)
	}
	return &invoice, nil
}

func (d *DB) ListPaymentsByInvoice(invoiceID int64) ([]models.Payment, error) {
	var payments []models.Payment
	err := d.Bun.NewSelect().
		Model(&payments).
		Where("invoice_id = ?", invoiceID).
		Order("pay_time").
		Scan(context.Background())
	if err != nil {
		return nil, wrap(err)
	}
	return payments, nil
}
