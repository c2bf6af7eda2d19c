package models

import "time"

// Property is the read-only catalog view this engine depends on. Catalog
// management lives elsewhere; the booking core only reads pricing and
// capacity data.
type Property struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name"`
	Location      string    `bson:"location,omitempty" json:"location,omitempty"`
	PricePerNight float64   `bson:"price_per_night" json:"pricePerNight"`
	MaxGuests     int       `bson:"max_guests" json:"maxGuests"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}
