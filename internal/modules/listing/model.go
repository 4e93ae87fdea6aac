// README: Parking listing aggregate and owner/booking-mode enums.
package listing

import (
	"time"

	"parkshare/internal/types"
)

type OwnerType string

const (
	OwnerResidential OwnerType = "residential"
	OwnerCommercial  OwnerType = "commercial"
	OwnerOpenArea    OwnerType = "open_area"
)

func (t OwnerType) Valid() bool {
	switch t {
	case OwnerResidential, OwnerCommercial, OwnerOpenArea:
		return true
	}
	return false
}

// BookingMode decides whether a new booking is confirmed immediately or waits for the owner.
type BookingMode string

const (
	ModeAutomatic BookingMode = "automatic"
	ModeManual    BookingMode = "manual"
)

func (m BookingMode) Valid() bool {
	return m == ModeAutomatic || m == ModeManual
}

type Listing struct {
	ID             types.ID    `json:"id"`
	OwnerID        types.ID    `json:"owner_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Address        string      `json:"address"`
	Position       types.Point `json:"position"`
	PricePerHour   float64     `json:"price_per_hour"`
	TotalSlots     int         `json:"total_slots"`
	AvailableSlots int         `json:"available_slots"`
	OwnerType      OwnerType   `json:"owner_type"`
	BookingMode    BookingMode `json:"booking_mode"`
	AvailableFrom  string      `json:"available_hours_start"`
	AvailableUntil string      `json:"available_hours_end"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
