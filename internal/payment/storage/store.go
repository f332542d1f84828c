package storage

import (
	"ms-hotel/internal/models"
)

type Store interface {
	SaveAttempt(attempt *models.PaymentAttempt) error
	GetAttempt(id string) (*models.PaymentAttempt, error)
	UpdateAttempt(attempt *models.PaymentAttempt) error
	ListAttemptsByInvoice(invoiceID int64, limit, offset int) ([]*models.PaymentAttempt, error)

	Close() error
	HealthCheck() error
}
