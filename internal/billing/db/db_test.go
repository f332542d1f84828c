package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-hotel/internal/billing/db"
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
		(*models.Booking)(nil),
		(*models.Invoice)(nil),
		(*models.Payment)(nil),
	} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table: %v", err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func TestInvoiceCRUD(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	invoice := &models.Invoice{BookingID: 1, Amount: 300, Paid: 0, Status: models.InvoiceUnpaid}
	require.NoError(t, d.CreateInvoice(invoice))
	require.NotZero(t, invoice.ID)

	got, err := d.GetInvoiceByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Amount)
	assert.Equal(t, models.InvoiceUnpaid, got.Status)

	require.NoError(t, d.UpdateInvoiceAmount(invoice.ID, 330))
	got, err = d.GetInvoiceByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 330.0, got.Amount)

	_, err = d.GetInvoiceByID(9999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordPayment_AppendsAndReconciles(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	invoice := &models.Invoice{BookingID: 1, Amount: 500, Paid: 0, Status: models.InvoiceUnpaid}
	require.NoError(t, d.CreateInvoice(invoice))

	got, err := d.RecordPayment(&models.Payment{InvoiceID: invoice.ID, Amount: 200, Reference: "txn_a", PayTime: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.Paid)
	assert.Equal(t, models.InvoicePartial, got.Status)

	got, err = d.RecordPayment(&models.Payment{InvoiceID: invoice.ID, Amount: 300, Reference: "txn_b", PayTime: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.Paid)
	assert.Equal(t, models.InvoicePaid, got.Status)

	stored, err := d.GetInvoiceByID(invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stored.Paid)
	assert.Equal(t, models.InvoicePaid, stored.Status)

	payments, err := d.ListPaymentsByInvoice(invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, 200.0, payments[0].Amount)
	assert.Equal(t, "txn_a", payments[0].Reference)
	assert.Equal(t, 300.0, payments[1].Amount)
}

// The paid total is incremented in SQL, so the stored amount never depends
// on what the caller read before paying. Two payments built from the same
// stale snapshot must still both land.
func TestRecordPayment_StaleReadersBothLand(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	invoice := &models.Invoice{BookingID: 1, Amount: 1000, Paid: 0, Status: models.InvoiceUnpaid}
	require.NoError(t, d.CreateInvoice(invoice))

	// Both callers saw paid=0 before paying.
	_, err := d.RecordPayment(&models.Payment{InvoiceID: invoice.ID, Amount: 400, Reference: "txn_desk", PayTime: time.Now()})
	require.NoError(t, err)
	got, err := d.RecordPayment(&models.Payment{InvoiceID: invoice.ID, Amount: 600, Reference: "txn_card", PayTime: time.Now()})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, got.Paid, "neither payment may be lost")
	assert.Equal(t, models.InvoicePaid, got.Status)
}

func TestRecordPayment_UnknownInvoice(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := d.RecordPayment(&models.Payment{InvoiceID: 9999, Amount: 50, Reference: "txn_x", PayTime: time.Now()})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRecordPayment_OverpaymentStillPaid(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	invoice := &models.Invoice{BookingID: 1, Amount: 100, Paid: 0, Status: models.InvoiceUnpaid}
	require.NoError(t, d.CreateInvoice(invoice))

	got, err := d.RecordPayment(&models.Payment{InvoiceID: invoice.ID, Amount: 150, Reference: "txn_over", PayTime: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 150.0, got.Paid)
	assert.Equal(t, models.InvoicePaid, got.Status)
}
