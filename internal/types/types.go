// README: Shared value objects used across modules.
package types

// ID is an opaque identifier for users, listings, bookings and payments.
type ID string

// Point is a geocoordinate in signed decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// IsZero reports whether p is the zero value (used as "not provided").
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}
