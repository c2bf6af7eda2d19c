package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transition is allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// PaymentStatus tracks payment settlement for a booking. It only moves
// pending -> completed or pending -> failed; a failed payment may be retried
// with another method, but completed never regresses.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Booking represents a stay reservation for a property over the half-open
// date interval [CheckIn, CheckOut). Bookings are never deleted; cancellation
// is a terminal status, not removal.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	BookingReference   string        `bson:"booking_reference" json:"bookingReference"`
	PropertyID         string        `bson:"property_id" json:"propertyId"`
	UserID             string        `bson:"user_id" json:"userId"`
	UserEmail          string        `bson:"user_email" json:"userEmail"`
	CheckIn            time.Time     `bson:"check_in" json:"checkIn"`
	CheckOut           time.Time     `bson:"check_out" json:"checkOut"`
	Guests             int           `bson:"guests" json:"guests"`
	Status             BookingStatus `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus `bson:"payment_status" json:"paymentStatus"`
	PaymentReference   string        `bson:"payment_reference,omitempty" json:"paymentReference,omitempty"`
	TotalCost          float64       `bson:"total_cost" json:"totalCost"`
	CancellationReason string        `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Overlaps reports whether the booking's date range conflicts with the
// half-open interval [checkIn, checkOut).
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && checkIn.Before(b.CheckOut)
}

// Nights is the number of nights covered by the booking.
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// BookingEvent is delivered to property watchers whenever a booking for the
// property changes state.
type BookingEvent struct {
	Type       string    `json:"type"` // created | confirmed | payment_failed | cancelled | expired
	PropertyID string    `json:"propertyId"`
	Booking    Booking   `json:"booking"`
	OccurredAt time.Time `json:"occurredAt"`
}
