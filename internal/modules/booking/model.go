// README: Booking aggregate, status definitions and earnings summaries.
package booking

import (
	"time"

	"parkshare/internal/types"
)

type Status string

const (
	StatusNone      Status = "none"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// HoldsSlot reports whether a booking in this status occupies one of the listing's slots.
func (s Status) HoldsSlot() bool {
	return s == StatusConfirmed || s == StatusActive
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

type Booking struct {
	ID             types.ID      `json:"id"`
	ListingID      types.ID      `json:"listing_id"`
	DriverID       types.ID      `json:"driver_id"`
	OwnerID        types.ID      `json:"owner_id"`
	ListingTitle   string        `json:"listing_title"`
	Status         Status        `json:"booking_status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	ActualEndTime  *time.Time    `json:"actual_end_time,omitempty"`
	BookedHours    int           `json:"booked_hours"`
	BaseAmount     float64       `json:"base_amount"`
	OverstayHours  int           `json:"overstay_hours"`
	OverstayAmount float64       `json:"overstay_amount"`
	TotalAmount    float64       `json:"total_amount"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type Event struct {
	ID         int64
	BookingID  types.ID
	FromStatus Status
	ToStatus   Status
	ActorType  string
	ActorID    *types.ID
	CreatedAt  time.Time
}

// AllowedTransitions represents the booking lifecycle as code.
var AllowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCompleted, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Earnings summarises paid revenue for an owner.
type Earnings struct {
	TotalEarnings float64           `json:"total_earnings"`
	TotalBookings int               `json:"total_bookings"`
	ByListing     []ListingEarnings `json:"by_listing"`
	Recent        []DailyEarnings   `json:"recent"`
}

type ListingEarnings struct {
	ListingID       types.ID `json:"listing_id"`
	Title           string   `json:"title"`
	BookingCount    int      `json:"booking_count"`
	Earnings        float64  `json:"earnings"`
	AvgBookingValue float64  `json:"avg_booking_value"`
}

type DailyEarnings struct {
	Date     time.Time `json:"date"`
	Bookings int       `json:"bookings"`
	Earnings float64   `json:"earnings"`
}
