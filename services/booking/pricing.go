package booking

import "time"

// Pricing policy constants. The first two guests are covered by the nightly
// rate; each additional guest pays a flat per-stay surcharge.
const (
	includedGuests    = 2
	guestSurchargeFee = 500.0
)

// Nights returns the number of nights between two check dates. The interval
// is half-open, so checkout day is not charged.
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// GuestSurcharge computes the flat surcharge for guests beyond the included
// count.
func GuestSurcharge(guests int) float64 {
	if guests <= includedGuests {
		return 0
	}
	return float64(guests-includedGuests) * guestSurchargeFee
}

// CalculateTotalCost computes the full price of a stay. It runs exactly once
// at creation; the stored total is never silently recomputed.
func CalculateTotalCost(pricePerNight float64, checkIn, checkOut time.Time, guests int) float64 {
	return float64(Nights(checkIn, checkOut))*pricePerNight + GuestSurcharge(guests)
}
