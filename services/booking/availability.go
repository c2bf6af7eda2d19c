package booking

import (
	"context"
	"fmt"
	"time"

	"havenstay/models"
)

// AvailabilityResult is the outcome of an interval-overlap check over a
// property's active bookings.
type AvailabilityResult struct {
	Available bool             `json:"available"`
	Conflicts []models.Booking `json:"conflicts"`
}

// CheckAvailability reports whether the property is free for the half-open
// interval [checkIn, checkOut). Cancelled bookings never conflict.
//
// This read is the advisory pre-check shown to clients before pricing; the
// authoritative re-check runs inside the repository's create transaction.
func (s *DefaultBookingService) CheckAvailability(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (*AvailabilityResult, error) {
	conflicts, err := s.Repo.FindOverlapping(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	return &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}
