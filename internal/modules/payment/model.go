// README: Simulated payment records. No real money moves through ParkShare.
package payment

import (
	"time"

	"parkshare/internal/types"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

const DefaultMethod = "dummy_card"

type Payment struct {
	ID            types.ID  `json:"id"`
	BookingID     types.ID  `json:"booking_id"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"payment_method"`
	TransactionID string    `json:"transaction_id"`
	Status        Status    `json:"payment_status"`
	IsDummy       bool      `json:"is_dummy"`
	CreatedAt     time.Time `json:"created_at"`
}

// DriverPayment is a payment joined with the booking it settled.
type DriverPayment struct {
	Payment
	ListingID   types.ID  `json:"listing_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	BookedHours int       `json:"booked_hours"`
}
