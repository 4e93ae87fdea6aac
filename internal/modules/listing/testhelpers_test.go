package listing

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"parkshare/internal/types"
)

var listingCols = []string{
	"id", "owner_id", "title", "description", "address", "latitude", "longitude",
	"price_per_hour", "total_slots", "available_slots", "owner_type", "booking_mode",
	"available_hours_start", "available_hours_end", "is_active", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })
	return NewStore(mock), mock
}

func listingRows(ls ...Listing) *pgxmock.Rows {
	rows := pgxmock.NewRows(listingCols)
	for _, l := range ls {
		rows.AddRow(
			string(l.ID), string(l.OwnerID), l.Title, l.Description, l.Address,
			l.Position.Lat, l.Position.Lng,
			l.PricePerHour, l.TotalSlots, l.AvailableSlots,
			string(l.OwnerType), string(l.BookingMode),
			l.AvailableFrom, l.AvailableUntil, l.IsActive, l.CreatedAt, l.UpdatedAt,
		)
	}
	return rows
}

func sampleListing(id, owner string) Listing {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return Listing{
		ID:             types.ID(id),
		OwnerID:        types.ID(owner),
		Title:          "Covered driveway near MG Road",
		Description:    "Gated driveway, fits one sedan, CCTV covered",
		Address:        "12 Residency Rd, Bengaluru",
		Position:       types.Point{Lat: 12.9716, Lng: 77.5946},
		PricePerHour:   40,
		TotalSlots:     2,
		AvailableSlots: 2,
		OwnerType:      OwnerResidential,
		BookingMode:    ModeAutomatic,
		AvailableFrom:  "06:00",
		AvailableUntil: "22:00",
		IsActive:       true,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

type fakeIndexer struct {
	indexed map[types.ID]types.Point
	removed []types.ID
	err     error
}

func newFakeIndexer() *fakeIndexer {
	return &fakeIndexer{indexed: map[types.ID]types.Point{}}
}

func (f *fakeIndexer) IndexListing(_ context.Context, id types.ID, pos types.Point) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[id] = pos
	return nil
}

func (f *fakeIndexer) RemoveListing(_ context.Context, id types.ID) error {
	if f.err != nil {
		return f.err
	}
	delete(f.indexed, id)
	f.removed = append(f.removed, id)
	return nil
}

type fakeGeocoder struct {
	pos types.Point
	err error
	got string
}

func (f *fakeGeocoder) Geocode(_ context.Context, address string) (types.Point, error) {
	f.got = address
	return f.pos, f.err
}

type fakeScreener struct {
	screened []Listing
}

func (f *fakeScreener) ScreenListing(_ context.Context, l Listing) error {
	f.screened = append(f.screened, l)
	return nil
}
