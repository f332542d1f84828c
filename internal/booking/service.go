package booking

import (
	"fmt"
	"math"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"time"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreateRoom(room *models.Room) error
	GetRoomByID(id int64) (*models.Room, error)
	ListRooms() ([]models.Room, error)
	CreateCustomer(customer *models.Customer) error
	GetCustomerByID(id int64) (*models.Customer, error)
	ListCustomers() ([]models.Customer, error)
	GetBookingByID(id int64) (*models.Booking, error)
	ListBookings() ([]models.Booking, error)
	IsRoomAvailable(roomID int64, start, end time.Time) (bool, error)
	CreateBooking(booking *models.Booking) error
	CheckInBooking(booking *models.Booking, at time.Time) error
	CheckOutBooking(booking *models.Booking, at time.Time, total float64) error
	CancelBooking(booking *models.Booking, cancellation *models.Cancellation) error
	SumServiceSubtotals(bookingID int64) (float64, error)
	ReportMaintenance(issue *models.MaintenanceIssue) error
	ResolveMaintenance(issue *models.MaintenanceIssue) error
	GetMaintenanceByID(id int64) (*models.MaintenanceIssue, error)
	ListOpenMaintenance() ([]models.MaintenanceIssue, error)
	OccupancyRate() (float64, error)
	BookingRevenue() (float64, error)
}

type RoomLock interface {
	LockRoom(roomID int64, token string) (bool, error)
	UnlockRoom(roomID int64, token string) error
}

type EventPublisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingCheckedIn(booking models.Booking) error
	PublishBookingCheckedOut(booking models.Booking) error
	PublishBookingCancelled(booking models.Booking, cancellation models.Cancellation) error
}

// RefundRate is the share of the booking total returned on cancellation.
const RefundRate = 0.8

type BookingService struct {
	DB     DBLayer
	Lock   RoomLock
	Events EventPublisher
	logger *logger.Logger
}

func NewBookingService(db DBLayer, lock RoomLock, events EventPublisher, log *logger.Logger) *BookingService {
	if log == nil {
		log = logger.NewNop()
	}
	return &BookingService{DB: db, Lock: lock, Events: events, logger: log}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ---------------- ROOMS / CUSTOMERS ----------------

func (s *BookingService) AddRoom(room *models.Room) error {
	if room.Price <= 0 {
		return fmt.Errorf("room price %.2f: %w", room.Price, models.ErrInvalidAmount)
	}
	if room.Status == "" {
		room.Status = models.RoomAvailable
	}
	return s.DB.CreateRoom(room)
}

func (s *BookingService) ListRooms() ([]models.Room, error) {
	return s.DB.ListRooms()
}

func (s *BookingService) AddCustomer(customer *models.Customer) error {
	return s.DB.CreateCustomer(customer)
}

func (s *BookingService) ListCustomers() ([]models.Customer, error) {
	return s.DB.ListCustomers()
}

// ---------------- AVAILABILITY ----------------

// IsAvailable reports whether the room is free for [start, end]. Pure read,
// no side effects.
func (s *BookingService) IsAvailable(roomID int64, start, end time.Time) (bool, error) {
	if _, err := s.DB.GetRoomByID(roomID); err != nil {
		return false, err
	}
	return s.DB.IsRoomAvailable(roomID, start, end)
}

// ---------------- LIFECYCLE ----------------

// Create reserves a room for the requested dates. The Redis lock closes the
// window between the availability read and the booking insert; the storage
// layer re-checks the interval inside the insert transaction as the
// durable guard.
func (s *BookingService) Create(req models.BookingRequest) (*models.Booking, error) {
	if _, err := s.DB.GetCustomerByID(req.CustomerID); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetRoomByID(req.RoomID); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	ok, err := s.Lock.LockRoom(req.RoomID, token)
	if err != nil {
		return nil, fmt.Errorf("room lock error: %w", err)
	}
	if !ok {
		s.logger.LogBooking("CREATE", 0, fmt.Sprintf("room %d locked by a concurrent reservation", req.RoomID))
		return nil, models.ErrRoomUnavailable
	}
	defer func() {
		if err := s.Lock.UnlockRoom(req.RoomID, token); err != nil {
			s.logger.Warn("BOOKING", fmt.Sprintf("failed to release lock on room %d: %v", req.RoomID, err))
		}
	}()

	booking := &models.Booking{
		CustomerID: req.CustomerID,
		RoomID:     req.RoomID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Status:     models.BookingReserved,
		Total:      0,
	}
	if err := s.DB.CreateBooking(booking); err != nil {
		return nil, err
	}
	s.logger.LogBooking("CREATE", booking.ID, fmt.Sprintf("room %d reserved for customer %d", booking.RoomID, booking.CustomerID))

	if s.Events != nil {
		if err := s.Events.PublishBookingCreated(*booking); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish booking created: %v", err))
		}
	}
	return booking, nil
}

func (s *BookingService) GetBooking(id int64) (*models.Booking, error) {
	return s.DB.GetBookingByID(id)
}

func (s *BookingService) ListBookings() ([]models.Booking, error) {
	return s.DB.ListBookings()
}

// CheckIn moves a reserved booking to checked_in and records the actual
// arrival time.
func (s *BookingService) CheckIn(id int64) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingReserved {
		return nil, fmt.Errorf("check-in from %q: %w", booking.Status, models.ErrInvalidTransition)
	}

	now := time.Now()
	if err := s.DB.CheckInBooking(booking, now); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCheckedIn
	booking.CheckIn = now
	s.logger.LogBooking("CHECK_IN", booking.ID, fmt.Sprintf("room %d occupied", booking.RoomID))

	if s.Events != nil {
		if err := s.Events.PublishBookingCheckedIn(*booking); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish booking checked in: %v", err))
		}
	}
	return booking, nil
}

// CheckOut finalizes the bill: room price plus every service order attached
// to the booking. Terminal; the room reverts to available.
func (s *BookingService) CheckOut(id int64) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.BookingCheckedIn {
		return nil, fmt.Errorf("check-out from %q: %w", booking.Status, models.ErrInvalidTransition)
	}

	room, err := s.DB.GetRoomByID(booking.RoomID)
	if err != nil {
		return nil, err
	}
	services, err := s.DB.SumServiceSubtotals(booking.ID)
	if err != nil {
		return nil, err
	}
	total := round2(room.Price + services)

	now := time.Now()
	if err := s.DB.CheckOutBooking(booking, now, total); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCheckedOut
	booking.CheckOut = &now
	booking.Total = total
	s.logger.LogBooking("CHECK_OUT", booking.ID, fmt.Sprintf("total %.2f, room %d released", total, booking.RoomID))

	if s.Events != nil {
		if err := s.Events.PublishBookingCheckedOut(*booking); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish booking checked out: %v", err))
		}
	}
	return booking, nil
}

// Cancel is allowed from reserved or checked_in. The refund is a fixed share
// of the total accumulated so far; the room always reverts to available.
func (s *BookingService) Cancel(id int64, reason string) (*models.Cancellation, error) {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		return nil, err
	}
	if !booking.Status.Active() {
		return nil, fmt.Errorf("cancel from %q: %w", booking.Status, models.ErrInvalidTransition)
	}

	cancellation := &models.Cancellation{
		BookingID: booking.ID,
		Reason:    reason,
		Refund:    round2(booking.Total * RefundRate),
	}
	if err := s.DB.CancelBooking(booking, cancellation); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCancelled
	s.logger.LogBooking("CANCEL", booking.ID, fmt.Sprintf("refund %.2f, room %d released", cancellation.Refund, booking.RoomID))

	if s.Events != nil {
		if err := s.Events.PublishBookingCancelled(*booking, *cancellation); err != nil {
			s.logger.Error("KAFKA", fmt.Sprintf("publish booking cancelled: %v", err))
		}
	}
	return cancellation, nil
}

// ---------------- MAINTENANCE ----------------

// ReportMaintenance opens an issue against the room and takes it out of
// service. The room stays in maintenance until every open issue is resolved
// through ResolveMaintenance.
func (s *BookingService) ReportMaintenance(roomID int64, description string) (*models.MaintenanceIssue, error) {
	if _, err := s.DB.GetRoomByID(roomID); err != nil {
		return nil, err
	}

	issue := &models.MaintenanceIssue{
		RoomID: roomID,
		Issue:  description,
		Status: models.MaintenanceOpen,
	}
	if err := s.DB.ReportMaintenance(issue); err != nil {
		return nil, err
	}
	s.logger.LogBooking("MAINTENANCE", issue.ID, fmt.Sprintf("room %d out of service: %s", roomID, description))
	return issue, nil
}

// ResolveMaintenance closes the issue and returns the room to available.
func (s *BookingService) ResolveMaintenance(issueID int64) (*models.MaintenanceIssue, error) {
	issue, err := s.DB.GetMaintenanceByID(issueID)
	if err != nil {
		return nil, err
	}
	if issue.Status != models.MaintenanceOpen {
		return nil, fmt.Errorf("resolve from %q: %w", issue.Status, models.ErrInvalidTransition)
	}

	if err := s.DB.ResolveMaintenance(issue); err != nil {
		return nil, err
	}
	issue.Status = models.MaintenanceClosed
	s.logger.LogBooking("MAINTENANCE", issue.ID, fmt.Sprintf("room %d back in service", issue.RoomID))
	return issue, nil
}

func (s *BookingService) OpenMaintenance() ([]models.MaintenanceIssue, error) {
	return s.DB.ListOpenMaintenance()
}

// ---------------- PRICING / REPORTS ----------------

// PreviewPrice applies the weekend surcharge and the season factor to a
// room's base price. Quote only; nothing is persisted.
func (s *BookingService) PreviewPrice(roomID int64, weekend bool, seasonFactor float64) (float64, error) {
	room, err := s.DB.GetRoomByID(roomID)
	if err != nil {
		return 0, err
	}
	price := room.Price
	if weekend {
		price *= 1.2
	}
	price *= seasonFactor
	return round2(price), nil
}

func (s *BookingService) OccupancyRate() (float64, error) {
	return s.DB.OccupancyRate()
}

func (s *BookingService) Revenue() (float64, error) {
	return s.DB.BookingRevenue()
}
