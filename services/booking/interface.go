package booking

import (
	"context"
	"time"

	bookingRepo "havenstay/database/repository/booking"
	propertyRepo "havenstay/database/repository/property"
	"havenstay/models"
	"havenstay/services/notification"
)

// DateLayout is the wire format for check-in/check-out dates.
const DateLayout = "2006-01-02"

// CreateBookingInput is the raw client input for a reservation request.
// Dates arrive as strings so that malformed input is rejected here, before
// any mutation is attempted.
type CreateBookingInput struct {
	PropertyID string `json:"propertyId"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Guests     int    `json:"guests"`
	UserID     string `json:"-"`
	UserEmail  string `json:"-"`
}

// DepositScheduler schedules the deadline sweep that releases unpaid
// bookings once their deposit due time passes.
type DepositScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, dueAt time.Time) error
}

// BookingService is the reservation orchestrator: it composes availability
// checking, pricing, the booking state machine and the notification boundary.
type BookingService interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error)
	CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (*AvailabilityResult, error)
	GetBooking(ctx context.Context, bookingID, requesterID string, elevated bool) (*models.Booking, error)
	ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error)
	ListPropertyBookings(ctx context.Context, propertyID string, activeOnly, elevated bool) ([]models.Booking, error)
	CancelBooking(ctx context.Context, bookingID, reason, requesterID string, elevated bool) (*models.Booking, error)
	Watch(propertyID string) (<-chan models.BookingEvent, func())
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	PropertyRepo propertyRepo.PropertyRepository
	Notifier     notification.Sender
	Scheduler    DepositScheduler
	Hub          *WatchHub
}
