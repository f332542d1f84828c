package billing

import (
	"fmt"
	"math"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/utils"
	"time"
)

type DBLayer interface {
	GetBookingByID(id int64) (*models.Booking, error)
	CreateInvoice(invoice *models.Invoice) error
	GetInvoiceByID(id int64) (*models.Invoice, error)
	ListInvoices() ([]models.Invoice, error)
	UpdateInvoiceAmount(id int64, amount float64) error
	RecordPayment(payment *models.Payment) (*models.Invoice, error)
	ListPaymentsByInvoice(invoiceID int64) ([]models.Payment, error)
}

type EventPublisher interface {
	PublishInvoiceCreated(invoice models.Invoice) error
	PublishPaymentRecorded(invoice models.Invoice, payment models.Payment) error
}

type BillingService struct {
	DB     DBLayer
	Events EventPublisher
	logger *logger.Logger
}

func NewBillingService(db DBLayer, events EventPublisher, log *logger.Logger) *BillingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &BillingService{DB: db, Events: events, logger: log}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateInvoice derives an invoice from the booking's total. Checking out
// first is the caller's responsibility; a booking that has not been
// finalized invoices at 0.
func (s *BillingService) CreateInvoice(bookingID int64) (*models.Invoice, error) {
	booking, err := s.DB.GetBookingByID(bookingID)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		BookingID: booking.ID,
		Amount:    booking.Total,
		Paid:      0,
		Status:    models.InvoiceUnpaid,
	}
	if err := s.DB.CreateInvoice(invoice); err != nil {
		return nil, err
	}
	s.logger.LogBilling("INVOICE", invoice.ID, fmt.Sprintf("booking %d, amount %.2f", booking.ID, invoice.Amount))

	if s.Events != nil {
		if err := s.Events.PublishInvoiceCreated(*invoice); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish invoice created: %v", err))
		}
	}
	return invoice, nil
}

func (s *BillingService) GetInvoice(id int64) (*models.Invoice, error) {
	return s.DB.GetInvoiceByID(id)
}

func (s *BillingService) ListInvoices() ([]models.Invoice, error) {
	return s.DB.ListInvoices()
}

// ApplyTax grows the invoice amount in place. Applying tax twice compounds
// on the already-taxed amount; stakeholders asked to keep the books this
// way rather than track a separate tax line.
func (s *BillingService) ApplyTax(invoiceID int64, ratePercent float64) (*models.Invoice, error) {
	if ratePercent <= 0 {
		return nil, fmt.Errorf("tax rate %.2f: %w", ratePercent, models.ErrInvalidAmount)
	}
	invoice, err := s.DB.GetInvoiceByID(invoiceID)
	if err != nil {
		return nil, err
	}

	invoice.Amount = round2(invoice.Amount + invoice.Amount*ratePercent/100)
	if err := s.DB.UpdateInvoiceAmount(invoice.ID, invoice.Amount); err != nil {
		return nil, err
	}
	s.logger.LogBilling("TAX", invoice.ID, fmt.Sprintf("%.2f%% applied, amount now %.2f", ratePercent, invoice.Amount))
	return invoice, nil
}

// Pay appends a receipt and reconciles the invoice. The paid total and
// status are recomputed inside the storage transaction, so concurrent
// payments against one invoice (front desk and the card-payment consumer)
// both land. Overpayment is accepted and still classifies as paid; no cap,
// no refund.
func (s *BillingService) Pay(invoiceID int64, amount float64) (*models.Invoice, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment %.2f: %w", amount, models.ErrInvalidAmount)
	}

	payment := &models.Payment{
		InvoiceID: invoiceID,
		Amount:    amount,
		Reference: utils.GenerateTransactionID(),
		PayTime:   time.Now(),
	}
	invoice, err := s.DB.RecordPayment(payment)
	if err != nil {
		return nil, err
	}
	s.logger.LogBilling("PAY", invoice.ID, fmt.Sprintf("+%.2f (%s), paid %.2f/%.2f (%s)", amount, payment.Reference, invoice.Paid, invoice.Amount, invoice.Status))

	if s.Events != nil {
		if err := s.Events.PublishPaymentRecorded(*invoice, *payment); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish payment recorded: %v", err))
		}
	}
	return invoice, nil
}

func (s *BillingService) Payments(invoiceID int64) ([]models.Payment, error) {
	if _, err := s.DB.GetInvoiceByID(invoiceID); err != nil {
		return nil, err
	}
	return s.DB.ListPaymentsByInvoice(invoiceID)
}
