package booking

import "time"

// Check-in opens at 14:00; the deposit is due six hours before that.
const (
	checkInHour      = 14
	depositLeadHours = 6
)

// DepositDueAt computes the payment deadline for a stay: 14:00 on the
// check-in date minus six hours.
func DepositDueAt(checkIn time.Time) time.Time {
	dayStart := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), checkInHour, 0, 0, 0, checkIn.Location())
	return dayStart.Add(-depositLeadHours * time.Hour)
}
