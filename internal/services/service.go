package services

import (
	"fmt"
	"math"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
)

type DBLayer interface {
	CreateService(service *models.Service) error
	GetServiceByID(id int64) (*models.Service, error)
	ListServices() ([]models.Service, error)
	SetRecipe(recipe *models.ServiceRecipe) error
	GetRecipe(serviceID int64) (*models.ServiceRecipe, error)
	BookingExists(id int64) (bool, error)
	AttachOrder(order *models.ServiceOrder, recipe *models.ServiceRecipe) error
	ListOrdersByBooking(bookingID int64) ([]models.ServiceOrder, error)
	ServiceRevenue() (float64, error)
}

// Processor attaches priced services to bookings and drives the stock
// deduction their recipes call for.
type Processor struct {
	DB     DBLayer
	logger *logger.Logger
}

func NewProcessor(db DBLayer, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.NewNop()
	}
	return &Processor{DB: db, logger: log}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (p *Processor) AddService(service *models.Service) error {
	if service.Price <= 0 {
		return fmt.Errorf("service price %.2f: %w", service.Price, models.ErrInvalidAmount)
	}
	return p.DB.CreateService(service)
}

func (p *Processor) ListServices() ([]models.Service, error) {
	return p.DB.ListServices()
}

// SetRecipe wires a service to the stock item it consumes.
func (p *Processor) SetRecipe(serviceID, itemID int64, units int) error {
	if units <= 0 {
		return fmt.Errorf("recipe units %d: %w", units, models.ErrInvalidQuantity)
	}
	if _, err := p.DB.GetServiceByID(serviceID); err != nil {
		return err
	}
	return p.DB.SetRecipe(&models.ServiceRecipe{ServiceID: serviceID, ItemID: itemID, Units: units})
}

// Attach orders a service for a booking. The subtotal is captured from the
// catalog price at order time. When the service carries a recipe the stock
// is drawn in the same transaction as the order insert, and the whole
// attach fails if stock is short.
func (p *Processor) Attach(bookingID, serviceID int64, quantity int) (*models.ServiceOrder, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, models.ErrInvalidQuantity)
	}

	exists, err := p.DB.BookingExists(bookingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("booking %d: %w", bookingID, models.ErrNotFound)
	}

	service, err := p.DB.GetServiceByID(serviceID)
	if err != nil {
		return nil, err
	}
	recipe, err := p.DB.GetRecipe(serviceID)
	if err != nil {
		return nil, err
	}

	order := &models.ServiceOrder{
		BookingID: bookingID,
		ServiceID: serviceID,
		Quantity:  quantity,
		Subtotal:  round2(service.Price * float64(quantity)),
	}
	if err := p.DB.AttachOrder(order, recipe); err != nil {
		return nil, err
	}
	p.logger.LogBooking("SERVICE", bookingID, fmt.Sprintf("%q x%d, subtotal %.2f", service.Name, quantity, order.Subtotal))
	return order, nil
}

func (p *Processor) OrdersForBooking(bookingID int64) ([]models.ServiceOrder, error) {
	return p.DB.ListOrdersByBooking(bookingID)
}

func (p *Processor) Revenue() (float64, error) {
	return p.DB.ServiceRevenue()
}
