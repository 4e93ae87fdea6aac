package listing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkshare/internal/types"
)

func fixedNow() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }

func TestService_Add_Success(t *testing.T) {
	store, mock := newMockStore(t)
	idx := newFakeIndexer()
	scr := &fakeScreener{}
	svc := NewService(store, idx, WithScreener(scr))
	svc.now = fixedNow

	mock.ExpectExec(`INSERT INTO parking_listings`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	l, err := svc.Add(context.Background(), AddCommand{
		OwnerID:      "owner1",
		Title:        "  Mall basement bay  ",
		Address:      "Phoenix Mall, Pune",
		Position:     types.Point{Lat: 18.56, Lng: 73.91},
		PricePerHour: 60,
		TotalSlots:   20,
		OwnerType:    OwnerCommercial,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, l.ID)
	assert.Equal(t, "Mall basement bay", l.Title)
	assert.Equal(t, 20, l.AvailableSlots)
	assert.Equal(t, ModeAutomatic, l.BookingMode)
	assert.Equal(t, "00:00", l.AvailableFrom)
	assert.Equal(t, "23:59", l.AvailableUntil)
	assert.True(t, l.IsActive)
	assert.Equal(t, fixedNow(), l.CreatedAt)
	assert.Equal(t, l.Position, idx.indexed[l.ID])
	require.Len(t, scr.screened, 1)
	assert.Equal(t, l.ID, scr.screened[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Add_GeocodesMissingPosition(t *testing.T) {
	store, mock := newMockStore(t)
	geo := &fakeGeocoder{pos: types.Point{Lat: 19.07, Lng: 72.87}}
	svc := NewService(store, nil, WithGeocoder(geo))

	mock.ExpectExec(`INSERT INTO parking_listings`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	l, err := svc.Add(context.Background(), AddCommand{
		OwnerID:      "owner1",
		Title:        "Society visitor parking",
		Address:      "Bandra West, Mumbai",
		PricePerHour: 30,
		TotalSlots:   3,
		OwnerType:    OwnerResidential,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bandra West, Mumbai", geo.got)
	assert.Equal(t, types.Point{Lat: 19.07, Lng: 72.87}, l.Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Add_Validation(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewService(store, nil)

	valid := AddCommand{
		OwnerID:      "owner1",
		Title:        "Open lot",
		Position:     types.Point{Lat: 10, Lng: 10},
		PricePerHour: 10,
		TotalSlots:   5,
		OwnerType:    OwnerOpenArea,
	}
	cases := []struct {
		name   string
		mutate func(*AddCommand)
	}{
		{"missing owner", func(c *AddCommand) { c.OwnerID = "" }},
		{"missing title", func(c *AddCommand) { c.Title = "   " }},
		{"negative price", func(c *AddCommand) { c.PricePerHour = -1 }},
		{"zero slots", func(c *AddCommand) { c.TotalSlots = 0 }},
		{"unknown owner type", func(c *AddCommand) { c.OwnerType = "house" }},
		{"unknown booking mode", func(c *AddCommand) { c.BookingMode = "instant" }},
		{"bad hours", func(c *AddCommand) { c.AvailableFrom = "25:00" }},
		{"no position without geocoder", func(c *AddCommand) { c.Position = types.Point{} }},
		{"latitude out of range", func(c *AddCommand) { c.Position = types.Point{Lat: 95, Lng: 1} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := valid
			tc.mutate(&cmd)
			_, err := svc.Add(context.Background(), cmd)
			assert.True(t, errors.Is(err, ErrBadRequest), "want ErrBadRequest, got %v", err)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_AdjustsSlotsAndReindexes(t *testing.T) {
	store, mock := newMockStore(t)
	idx := newFakeIndexer()
	svc := NewService(store, idx)
	svc.now = fixedNow

	existing := sampleListing("l1", "owner1")
	existing.TotalSlots = 4
	existing.AvailableSlots = 1

	mock.ExpectQuery(`FROM parking_listings WHERE id = \$1`).
		WithArgs("l1").
		WillReturnRows(listingRows(existing))
	mock.ExpectExec(`UPDATE parking_listings`).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	slots := 2
	price := 55.0
	l, err := svc.Update(context.Background(), UpdateCommand{
		ListingID:    "l1",
		OwnerID:      "owner1",
		TotalSlots:   &slots,
		PricePerHour: &price,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, l.TotalSlots)
	assert.Equal(t, 0, l.AvailableSlots, "available slots never go negative")
	assert.InDelta(t, 55.0, l.PricePerHour, 0.0001)
	assert.Contains(t, idx.indexed, types.ID("l1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Update_Forbidden(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewService(store, nil)

	mock.ExpectQuery(`FROM parking_listings WHERE id = \$1`).
		WithArgs("l1").
		WillReturnRows(listingRows(sampleListing("l1", "owner1")))

	title := "mine now"
	_, err := svc.Update(context.Background(), UpdateCommand{ListingID: "l1", OwnerID: "intruder", Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Deactivate_RemovesFromIndex(t *testing.T) {
	store, mock := newMockStore(t)
	idx := newFakeIndexer()
	idx.indexed["l1"] = types.Point{Lat: 1, Lng: 1}
	svc := NewService(store, idx)

	mock.ExpectQuery(`FROM parking_listings WHERE id = \$1`).
		WithArgs("l1").
		WillReturnRows(listingRows(sampleListing("l1", "owner1")))
	mock.ExpectExec(`UPDATE parking_listings SET is_active = false`).
		WithArgs("l1", "owner1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, svc.Deactivate(context.Background(), "l1", "owner1"))
	assert.NotContains(t, idx.indexed, types.ID("l1"))
	assert.Equal(t, []types.ID{"l1"}, idx.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_IndexFailureDoesNotFailWrite(t *testing.T) {
	store, mock := newMockStore(t)
	idx := newFakeIndexer()
	idx.err = errors.New("redis down")
	svc := NewService(store, idx)

	mock.ExpectExec(`INSERT INTO parking_listings`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	_, err := svc.Add(context.Background(), AddCommand{
		OwnerID:      "owner1",
		Title:        "Street-side bay",
		Position:     types.Point{Lat: 28.61, Lng: 77.2},
		PricePerHour: 20,
		TotalSlots:   1,
		OwnerType:    OwnerOpenArea,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_NavigationLink(t *testing.T) {
	store, mock := newMockStore(t)
	svc := NewService(store, nil)

	mock.ExpectQuery(`FROM parking_listings WHERE id = \$1`).
		WithArgs("l1").
		WillReturnRows(listingRows(sampleListing("l1", "owner1")))

	link, l, err := svc.NavigationLink(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=12.9716,77.5946", link)
	assert.Equal(t, types.ID("l1"), l.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`FROM parking_listings WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListActiveByIDs(t *testing.T) {
	store, mock := newMockStore(t)

	empty, err := store.ListActiveByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	a := sampleListing("a", "o1")
	b := sampleListing("b", "o2")
	mock.ExpectQuery(`WHERE id = ANY\(\$1\) AND is_active = true`).
		WithArgs([]string{"a", "b"}).
		WillReturnRows(listingRows(a, b))

	got, err := store.ListActiveByIDs(context.Background(), []types.ID{"a", "b"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, OwnerResidential, got[1].OwnerType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ForceDeactivate(t *testing.T) {
	store, mock := newMockStore(t)
	idx := newFakeIndexer()
	svc := NewService(store, idx)

	mock.ExpectExec(`UPDATE parking_listings SET is_active = false`).
		WithArgs("l1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE parking_listings SET is_active = false`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, svc.ForceDeactivate(context.Background(), "l1"))
	assert.Equal(t, []types.ID{"l1"}, idx.removed)
	assert.ErrorIs(t, svc.ForceDeactivate(context.Background(), "gone"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
