// README: Listing service handles owner listing management, geocoding and index sync.
package listing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parkshare/internal/modules/location"
	"parkshare/internal/types"
)

var (
	ErrNotFound   = eris.New("listing not found")
	ErrForbidden  = eris.New("listing belongs to another owner")
	ErrBadRequest = eris.New("invalid listing request")
)

// Indexer keeps the radius prefilter in sync with active listings.
type Indexer interface {
	IndexListing(ctx context.Context, id types.ID, pos types.Point) error
	RemoveListing(ctx context.Context, id types.ID) error
}

// Geocoder resolves a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (types.Point, error)
}

// Screener inspects newly created listings for signs of abuse.
type Screener interface {
	ScreenListing(ctx context.Context, l Listing) error
}

type Option func(*Service)

func WithGeocoder(g Geocoder) Option {
	return func(s *Service) { s.geocoder = g }
}

func WithScreener(sc Screener) Option {
	return func(s *Service) { s.screener = sc }
}

type Service struct {
	store    *Store
	index    Indexer
	geocoder Geocoder
	screener Screener
	now      func() time.Time
}

func NewService(store *Store, index Indexer, opts ...Option) *Service {
	s := &Service{store: store, index: index, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type AddCommand struct {
	OwnerID        types.ID
	Title          string
	Description    string
	Address        string
	Position       types.Point
	PricePerHour   float64
	TotalSlots     int
	OwnerType      OwnerType
	BookingMode    BookingMode
	AvailableFrom  string
	AvailableUntil string
}

type UpdateCommand struct {
	ListingID      types.ID
	OwnerID        types.ID
	Title          *string
	Description    *string
	PricePerHour   *float64
	TotalSlots     *int
	OwnerType      *OwnerType
	BookingMode    *BookingMode
	AvailableFrom  *string
	AvailableUntil *string
	IsActive       *bool
}

func (s *Service) Add(ctx context.Context, cmd AddCommand) (*Listing, error) {
	if cmd.OwnerID == "" {
		return nil, eris.Wrap(ErrBadRequest, "owner id is required")
	}
	if cmd.BookingMode == "" {
		cmd.BookingMode = ModeAutomatic
	}
	if cmd.AvailableFrom == "" {
		cmd.AvailableFrom = defaultAvailableFrom
	}
	if cmd.AvailableUntil == "" {
		cmd.AvailableUntil = defaultAvailableUntil
	}

	pos := cmd.Position
	if pos.IsZero() {
		if s.geocoder == nil || strings.TrimSpace(cmd.Address) == "" {
			return nil, eris.Wrap(ErrBadRequest, "coordinates or a geocodable address are required")
		}
		p, err := s.geocoder.Geocode(ctx, cmd.Address)
		if err != nil {
			return nil, eris.Wrapf(ErrBadRequest, "geocode %q: %v", cmd.Address, err)
		}
		pos = p
	}

	now := s.now()
	l := &Listing{
		ID:             types.ID(uuid.NewString()),
		OwnerID:        cmd.OwnerID,
		Title:          strings.TrimSpace(cmd.Title),
		Description:    strings.TrimSpace(cmd.Description),
		Address:        strings.TrimSpace(cmd.Address),
		Position:       pos,
		PricePerHour:   cmd.PricePerHour,
		TotalSlots:     cmd.TotalSlots,
		AvailableSlots: cmd.TotalSlots,
		OwnerType:      cmd.OwnerType,
		BookingMode:    cmd.BookingMode,
		AvailableFrom:  cmd.AvailableFrom,
		AvailableUntil: cmd.AvailableUntil,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := validate(l); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}

	s.syncIndex(ctx, l)
	if s.screener != nil {
		if err := s.screener.ScreenListing(ctx, *l); err != nil {
			zap.L().Warn("listing screening failed", zap.String("listing_id", string(l.ID)), zap.Error(err))
		}
	}
	return l, nil
}

func (s *Service) Update(ctx context.Context, cmd UpdateCommand) (*Listing, error) {
	l, err := s.store.Get(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != cmd.OwnerID {
		return nil, ErrForbidden
	}

	if cmd.Title != nil {
		l.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.Description != nil {
		l.Description = strings.TrimSpace(*cmd.Description)
	}
	if cmd.PricePerHour != nil {
		l.PricePerHour = *cmd.PricePerHour
	}
	if cmd.TotalSlots != nil {
		// Mirrors the SQL update so the returned value matches storage.
		delta := *cmd.TotalSlots - l.TotalSlots
		l.TotalSlots = *cmd.TotalSlots
		l.AvailableSlots = max(0, min(l.TotalSlots, l.AvailableSlots+delta))
	}
	if cmd.OwnerType != nil {
		l.OwnerType = *cmd.OwnerType
	}
	if cmd.BookingMode != nil {
		l.BookingMode = *cmd.BookingMode
	}
	if cmd.AvailableFrom != nil {
		l.AvailableFrom = *cmd.AvailableFrom
	}
	if cmd.AvailableUntil != nil {
		l.AvailableUntil = *cmd.AvailableUntil
	}
	if cmd.IsActive != nil {
		l.IsActive = *cmd.IsActive
	}
	l.UpdatedAt = s.now()

	if err := validate(l); err != nil {
		return nil, err
	}
	ok, err := s.store.Update(ctx, l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	s.syncIndex(ctx, l)
	return l, nil
}

// Deactivate soft-deletes a listing; existing bookings keep referencing it.
func (s *Service) Deactivate(ctx context.Context, id, ownerID types.ID) error {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if l.OwnerID != ownerID {
		return ErrForbidden
	}
	ok, err := s.store.Deactivate(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	l.IsActive = false
	s.syncIndex(ctx, l)
	return nil
}

// ForceDeactivate takes a listing off the market on behalf of an admin.
func (s *Service) ForceDeactivate(ctx context.Context, id types.ID) error {
	ok, err := s.store.ForceDeactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	s.syncIndex(ctx, &Listing{ID: id})
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Listing, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID types.ID) ([]Listing, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

func (s *Service) ListActive(ctx context.Context) ([]Listing, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) ListActiveByIDs(ctx context.Context, ids []types.ID) ([]Listing, error) {
	return s.store.ListActiveByIDs(ctx, ids)
}

// NavigationLink returns a Google Maps directions URL to the listing.
func (s *Service) NavigationLink(ctx context.Context, id types.ID) (string, *Listing, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return DirectionsURL(l.Position), l, nil
}

func DirectionsURL(p types.Point) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%v,%v", p.Lat, p.Lng)
}

func (s *Service) syncIndex(ctx context.Context, l *Listing) {
	if s.index == nil {
		return
	}
	var err error
	if l.IsActive {
		err = s.index.IndexListing(ctx, l.ID, l.Position)
	} else {
		err = s.index.RemoveListing(ctx, l.ID)
	}
	if err != nil {
		// Search falls back to Postgres when the index misses a listing.
		zap.L().Warn("listing index sync failed", zap.String("listing_id", string(l.ID)), zap.Error(err))
	}
}

func validate(l *Listing) error {
	switch {
	case l.Title == "":
		return eris.Wrap(ErrBadRequest, "title is required")
	case math.IsNaN(l.PricePerHour) || math.IsInf(l.PricePerHour, 0) || l.PricePerHour < 0:
		return eris.Wrap(ErrBadRequest, "price_per_hour must be a non-negative amount")
	case l.TotalSlots <= 0:
		return eris.Wrap(ErrBadRequest, "total_slots must be positive")
	case l.AvailableSlots < 0 || l.AvailableSlots > l.TotalSlots:
		return eris.Wrap(ErrBadRequest, "available_slots must be within [0, total_slots]")
	case !l.OwnerType.Valid():
		return eris.Wrapf(ErrBadRequest, "unknown owner_type %q", l.OwnerType)
	case !l.BookingMode.Valid():
		return eris.Wrapf(ErrBadRequest, "unknown booking_mode %q", l.BookingMode)
	}
	if _, err := parseClock(l.AvailableFrom); err != nil {
		return err
	}
	if _, err := parseClock(l.AvailableUntil); err != nil {
		return err
	}
	if err := location.ValidatePoint(l.Position); err != nil {
		return eris.Wrap(ErrBadRequest, err.Error())
	}
	return nil
}
