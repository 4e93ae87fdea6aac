package booking

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"parkshare/internal/modules/billing"
	"parkshare/internal/modules/listing"
	"parkshare/internal/types"
)

var bookingCols = []string{
	"id", "listing_id", "driver_id", "owner_id", "title",
	"status", "payment_status", "start_time", "end_time", "actual_end_time",
	"booked_hours", "base_amount", "overstay_hours", "overstay_amount", "total_amount",
	"created_at", "updated_at",
}

var testNow = time.Date(2026, 5, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeListings struct {
	byID map[types.ID]*listing.Listing
}

func (f *fakeListings) Get(_ context.Context, id types.ID) (*listing.Listing, error) {
	l, ok := f.byID[id]
	if !ok {
		return nil, listing.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

type fakeWatcher struct {
	drivers []types.ID
}

func (f *fakeWatcher) CheckRepeatedOverstays(_ context.Context, driverID types.ID) error {
	f.drivers = append(f.drivers, driverID)
	return nil
}

func newTestService(t *testing.T, listings ...listing.Listing) (*Service, pgxmock.PgxPoolIface, *fakeWatcher) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	src := &fakeListings{byID: map[types.ID]*listing.Listing{}}
	for i := range listings {
		src.byID[listings[i].ID] = &listings[i]
	}
	w := &fakeWatcher{}
	svc := NewService(NewStore(mock), src, billing.NewCalculator(billing.DefaultOverstayMultiplier),
		WithOverstayWatcher(w), WithClock(fixedClock))
	return svc, mock, w
}

func parkingSpot(id string, mode listing.BookingMode, available int) listing.Listing {
	return listing.Listing{
		ID:             types.ID(id),
		OwnerID:        "owner1",
		Title:          "Basement bay 4",
		Position:       types.Point{Lat: 18.52, Lng: 73.85},
		PricePerHour:   50,
		TotalSlots:     3,
		AvailableSlots: available,
		OwnerType:      listing.OwnerCommercial,
		BookingMode:    mode,
		AvailableFrom:  "00:00",
		AvailableUntil: "23:59",
		IsActive:       true,
	}
}

func sampleBooking(id string, status Status) Booking {
	start := time.Date(2026, 5, 14, 8, 0, 0, 0, time.UTC)
	return Booking{
		ID:            types.ID(id),
		ListingID:     "l1",
		DriverID:      "driver1",
		OwnerID:       "owner1",
		ListingTitle:  "Basement bay 4",
		Status:        status,
		PaymentStatus: PaymentPending,
		StartTime:     start,
		EndTime:       start.Add(2 * time.Hour),
		BookedHours:   2,
		BaseAmount:    100,
		TotalAmount:   100,
		CreatedAt:     start.Add(-time.Hour),
		UpdatedAt:     start.Add(-time.Hour),
	}
}

func bookingRows(bs ...Booking) *pgxmock.Rows {
	rows := pgxmock.NewRows(bookingCols)
	for _, b := range bs {
		rows.AddRow(
			string(b.ID), string(b.ListingID), string(b.DriverID), string(b.OwnerID), b.ListingTitle,
			string(b.Status), string(b.PaymentStatus), b.StartTime, b.EndTime, b.ActualEndTime,
			b.BookedHours, b.BaseAmount, b.OverstayHours, b.OverstayAmount, b.TotalAmount,
			b.CreatedAt, b.UpdatedAt,
		)
	}
	return rows
}

const (
	getBookingSQL  = `JOIN parking_listings p ON p.id = b.listing_id WHERE b.id = \$1`
	reserveSlotSQL = `UPDATE parking_listings\s+SET available_slots = available_slots - 1, updated_at = NOW\(\)\s+WHERE id = \$1 AND is_active AND available_slots > 0`
	releaseSlotSQL = `SET available_slots = LEAST\(total_slots, available_slots \+ 1\)`
	updateStatus   = `UPDATE bookings\s+SET status = \$1`
	insertEvent    = `INSERT INTO booking_state_events`
)
