package bookingRepo

import (
	"context"
	"errors"
	"time"

	"havenstay/models"
)

// Sentinel errors surfaced by repository implementations. Callers branch on
// these with errors.Is and translate them into API-level errors.
var (
	// ErrConflict means the requested date range overlaps an active booking.
	ErrConflict = errors.New("booking dates conflict with an existing booking")
	// ErrNotFound means no booking matched the given id or reference.
	ErrNotFound = errors.New("booking not found")
	// ErrTerminalState means the booking is cancelled or completed and
	// accepts no further transitions.
	ErrTerminalState = errors.New("booking is in a terminal state")
	// ErrPaymentRegression means a completed payment was asked to change,
	// which the state machine forbids.
	ErrPaymentRegression = errors.New("completed payment cannot be modified")
)

// BookingRepository owns the booking lifecycle. All mutations go through it;
// the availability re-check and the pending write in CreateIfAvailable are a
// single atomic operation against the property's booking set.
type BookingRepository interface {
	// CreateIfAvailable persists the booking iff no active booking for the
	// same property overlaps [CheckIn, CheckOut). Returns ErrConflict
	// otherwise. The check and the insert run in one transaction.
	CreateIfAvailable(ctx context.Context, booking *models.Booking) error

	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	GetByUser(ctx context.Context, userID string) ([]models.Booking, error)

	// GetByProperty returns the property's bookings; with activeOnly set,
	// cancelled bookings are filtered out.
	GetByProperty(ctx context.Context, propertyID string, activeOnly bool) ([]models.Booking, error)

	// FindOverlapping returns active (non-cancelled) bookings for the
	// property whose date ranges conflict with [checkIn, checkOut).
	FindOverlapping(ctx context.Context, propertyID string, checkIn, checkOut time.Time) ([]models.Booking, error)

	// MarkPaid transitions the booking to confirmed/completed payment.
	// Calling it again with the same provider reference is a no-op.
	MarkPaid(ctx context.Context, bookingID, providerRef string) (*models.Booking, error)

	// MarkPaymentFailed records a failed payment attempt; the booking stays
	// pending so the user may retry with another method.
	MarkPaymentFailed(ctx context.Context, bookingID, reason string) (*models.Booking, error)

	// Cancel sets the terminal cancelled status. It is compatible with any
	// payment status; it never alters it.
	Cancel(ctx context.Context, bookingID, reason string) (*models.Booking, error)

	// ExpirePending cancels the booking iff it is still pending and unpaid.
	// Returns false (and no error) when the booking paid or moved on in the
	// meantime.
	ExpirePending(ctx context.Context, bookingID string) (bool, error)
}
