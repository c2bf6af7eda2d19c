package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "havenstay/database/repository/booking"
	propertyRepo "havenstay/database/repository/property"
	"havenstay/models"
	"havenstay/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the request, prices the stay and commits a pending
// reservation. The availability re-check and the write happen atomically in
// the repository; validation failures return before anything is persisted.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	logger := utils.GetLogger()

	if input.UserID == "" {
		return nil, NewAuthRequiredError("a signed-in user is required to book")
	}

	checkIn, checkOut, err := parseStayDates(input.CheckIn, input.CheckOut)
	if err != nil {
		return nil, err
	}

	property, err := s.PropertyRepo.GetByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, propertyRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("property %s not found", input.PropertyID))
		}
		return nil, fmt.Errorf("failed to load property: %w", err)
	}

	if input.Guests < 1 {
		return nil, NewValidationError("at least one guest is required")
	}
	if input.Guests > property.MaxGuests {
		return nil, NewValidationError(fmt.Sprintf("property sleeps at most %d guests", property.MaxGuests))
	}

	reference, err := GenerateBookingReference()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	booking := &models.Booking{
		ID:               uuid.New().String(),
		BookingReference: reference,
		PropertyID:       property.ID,
		UserID:           input.UserID,
		UserEmail:        input.UserEmail,
		CheckIn:          checkIn,
		CheckOut:         checkOut,
		Guests:           input.Guests,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
		TotalCost:        CalculateTotalCost(property.PricePerNight, checkIn, checkOut, input.Guests),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Repo.CreateIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrConflict) {
			return nil, NewConflictError("the property is already booked for part of the selected dates")
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	logger.Info("booking created",
		zap.String("bookingID", booking.ID),
		zap.String("reference", booking.BookingReference),
		zap.String("propertyID", booking.PropertyID),
		zap.Float64("totalCost", booking.TotalCost))

	if s.Scheduler != nil {
		dueAt := DepositDueAt(checkIn)
		if err := s.Scheduler.ScheduleExpiry(ctx, booking.ID, dueAt); err != nil {
			logger.Error("failed to schedule deposit expiry sweep",
				zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}

	s.notify(booking.UserEmail, "booking_created", map[string]string{
		"bookingReference": booking.BookingReference,
		"propertyName":     property.Name,
		"checkIn":          checkIn.Format(DateLayout),
		"checkOut":         checkOut.Format(DateLayout),
		"totalCost":        fmt.Sprintf("%.2f", booking.TotalCost),
		"depositDueAt":     DepositDueAt(checkIn).Format(time.RFC3339),
	})
	if s.Hub != nil {
		s.Hub.Publish("created", *booking)
	}

	return booking, nil
}

// GetBooking fetches one booking, restricted to its owner unless the caller
// holds elevated privilege.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID, requesterID string, elevated bool) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
		}
		return nil, err
	}
	if booking.UserID != requesterID && !elevated {
		return nil, NewUnauthorizedError("booking belongs to another user")
	}
	return booking, nil
}

// ListUserBookings returns the caller's bookings, newest first.
func (s *DefaultBookingService) ListUserBookings(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Repo.GetByUser(ctx, userID)
}

// ListPropertyBookings returns a property's booking calendar. Reserved for
// elevated callers: it exposes other users' bookings.
func (s *DefaultBookingService) ListPropertyBookings(ctx context.Context, propertyID string, activeOnly, elevated bool) ([]models.Booking, error) {
	if !elevated {
		return nil, NewUnauthorizedError("property booking lists require support privileges")
	}
	return s.Repo.GetByProperty(ctx, propertyID, activeOnly)
}

// CancelBooking applies the terminal cancelled status. Only the owner or an
// elevated caller may cancel; payment status is never altered here.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID, reason, requesterID string, elevated bool) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("booking %s not found", bookingID))
		}
		return nil, err
	}
	if booking.UserID != requesterID && !elevated {
		return nil, NewUnauthorizedError("booking belongs to another user")
	}

	cancelled, err := s.Repo.Cancel(ctx, bookingID, reason)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrTerminalState) {
			return nil, NewValidationError("booking can no longer be cancelled")
		}
		return nil, err
	}

	utils.GetLogger().Info("booking cancelled",
		zap.String("bookingID", bookingID),
		zap.String("reason", reason))

	if s.Hub != nil {
		s.Hub.Publish("cancelled", *cancelled)
	}
	return cancelled, nil
}

// Watch subscribes the caller to booking events for one property.
func (s *DefaultBookingService) Watch(propertyID string) (<-chan models.BookingEvent, func()) {
	return s.Hub.Watch(propertyID)
}

// notify emits a best-effort notification out of band. Failures are logged
// and never surface to the originating operation.
func (s *DefaultBookingService) notify(recipient, template string, params map[string]string) {
	if s.Notifier == nil || recipient == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.Notifier.Send(ctx, template, recipient, params); err != nil {
			utils.GetLogger().Warn("notification delivery failed",
				zap.String("template", template), zap.Error(err))
		}
	}()
}

// parseStayDates validates the wire-format dates and their ordering.
func parseStayDates(checkInStr, checkOutStr string) (time.Time, time.Time, error) {
	checkIn, err := time.Parse(DateLayout, checkInStr)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("checkIn must be a date in YYYY-MM-DD format")
	}
	checkOut, err := time.Parse(DateLayout, checkOutStr)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("checkOut must be a date in YYYY-MM-DD format")
	}
	if !checkIn.Before(checkOut) {
		return time.Time{}, time.Time{}, NewValidationError("checkOut must be after checkIn")
	}
	today := time.Now().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return time.Time{}, time.Time{}, NewValidationError("checkIn cannot be in the past")
	}
	return checkIn, checkOut, nil
}
