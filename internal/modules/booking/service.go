// README: Booking service implements the reservation lifecycle, slot accounting and overstay billing.
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parkshare/internal/modules/billing"
	"parkshare/internal/modules/listing"
	"parkshare/internal/types"
)

var (
	ErrNotFound     = eris.New("booking not found")
	ErrForbidden    = eris.New("booking belongs to another user")
	ErrInvalidState = eris.New("invalid booking state transition")
	ErrConflict     = eris.New("booking state conflict")
	ErrNoSlots      = eris.New("no available slots")
	ErrBadRequest   = eris.New("invalid booking request")
)

const earningsWindow = 30 * 24 * time.Hour

type Listings interface {
	Get(ctx context.Context, id types.ID) (*listing.Listing, error)
}

// OverstayWatcher is told about drivers who just overstayed.
type OverstayWatcher interface {
	CheckRepeatedOverstays(ctx context.Context, driverID types.ID) error
}

type Option func(*Service)

func WithOverstayWatcher(w OverstayWatcher) Option {
	return func(s *Service) { s.watcher = w }
}

func WithClock(c billing.Clock) Option {
	return func(s *Service) { s.clock = c }
}

type Service struct {
	store    *Store
	listings Listings
	calc     billing.Calculator
	watcher  OverstayWatcher
	clock    billing.Clock
}

func NewService(store *Store, listings Listings, calc billing.Calculator, opts ...Option) *Service {
	s := &Service{store: store, listings: listings, calc: calc, clock: billing.SystemClock}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateCommand struct {
	ListingID   types.ID
	DriverID    types.ID
	StartTime   time.Time
	BookedHours int
}

type CompleteCommand struct {
	BookingID types.ID
	DriverID  types.ID
	ActualEnd *time.Time
}

// Completion is a completed booking together with its overstay breakdown.
type Completion struct {
	Booking  *Booking               `json:"booking"`
	Overstay billing.OverstayResult `json:"overstay"`
}

// Create reserves a listing for a driver. Automatic listings are confirmed
// at once and take a slot; manual listings wait for the owner.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	if cmd.ListingID == "" || cmd.DriverID == "" || cmd.StartTime.IsZero() {
		return nil, eris.Wrap(ErrBadRequest, "listing_id, driver_id and start_time are required")
	}
	if cmd.BookedHours <= 0 {
		return nil, eris.Wrapf(ErrBadRequest, "booked_hours must be positive, got %d", cmd.BookedHours)
	}

	l, err := s.listings.Get(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}
	if !l.IsActive {
		return nil, listing.ErrNotFound
	}
	if l.AvailableSlots < 1 {
		return nil, ErrNoSlots
	}

	status := StatusPending
	if l.BookingMode == listing.ModeAutomatic {
		status = StatusConfirmed
	}
	now := s.clock()
	base := types.RoundCents(l.PricePerHour * float64(cmd.BookedHours))
	b := &Booking{
		ID:            types.ID(uuid.NewString()),
		ListingID:     l.ID,
		DriverID:      cmd.DriverID,
		OwnerID:       l.OwnerID,
		ListingTitle:  l.Title,
		Status:        status,
		PaymentStatus: PaymentPending,
		StartTime:     cmd.StartTime,
		EndTime:       cmd.StartTime.Add(time.Duration(cmd.BookedHours) * time.Hour),
		BookedHours:   cmd.BookedHours,
		BaseAmount:    base,
		TotalAmount:   base,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.InTx(ctx, func(tx *Store) error {
		if status == StatusConfirmed {
			ok, err := tx.ReserveSlot(ctx, l.ID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrNoSlots
			}
		}
		if err := tx.Create(ctx, b); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, &Event{
			BookingID:  b.ID,
			FromStatus: StatusNone,
			ToStatus:   status,
			ActorType:  "driver",
			ActorID:    &cmd.DriverID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Approve confirms a pending booking on one of the owner's listings.
func (s *Service) Approve(ctx context.Context, id, ownerID types.ID) (*Booking, error) {
	b, err := s.ownedBy(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidState
	}
	l, err := s.listings.Get(ctx, b.ListingID)
	if err != nil {
		return nil, err
	}
	if !l.IsActive {
		return nil, listing.ErrNotFound
	}
	err = s.store.InTx(ctx, func(tx *Store) error {
		ok, err := tx.ReserveSlot(ctx, b.ListingID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoSlots
		}
		return s.transition(ctx, tx, b, StatusConfirmed, "owner", ownerID)
	})
	if err != nil {
		return nil, err
	}
	b.Status = StatusConfirmed
	return b, nil
}

// Reject cancels a pending booking on one of the owner's listings.
func (s *Service) Reject(ctx context.Context, id, ownerID types.ID) (*Booking, error) {
	b, err := s.ownedBy(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusPending {
		return nil, ErrInvalidState
	}
	err = s.store.InTx(ctx, func(tx *Store) error {
		return s.transition(ctx, tx, b, StatusCancelled, "owner", ownerID)
	})
	if err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	return b, nil
}

// Complete ends a stay, bills any overstay and frees the slot.
func (s *Service) Complete(ctx context.Context, cmd CompleteCommand) (*Completion, error) {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if b.DriverID != cmd.DriverID {
		return nil, ErrForbidden
	}
	if !CanTransition(b.Status, StatusCompleted) {
		return nil, ErrInvalidState
	}

	res, err := s.calc.Compute(billing.Stay{
		PlannedEnd:  b.EndTime,
		ActualEnd:   cmd.ActualEnd,
		BookedHours: b.BookedHours,
		BaseAmount:  b.BaseAmount,
	}, s.clock)
	if err != nil {
		return nil, err
	}

	from := b.Status
	end := res.ActualEnd
	b.ActualEndTime = &end
	b.OverstayHours = res.OverstayHours
	b.OverstayAmount = res.OverstayAmount
	b.TotalAmount = res.TotalAmount

	err = s.store.InTx(ctx, func(tx *Store) error {
		ok, err := tx.Complete(ctx, b, from)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		if err := tx.ReleaseSlot(ctx, b.ListingID); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, &Event{
			BookingID:  b.ID,
			FromStatus: from,
			ToStatus:   StatusCompleted,
			ActorType:  "driver",
			ActorID:    &cmd.DriverID,
			CreatedAt:  s.clock(),
		})
	})
	if err != nil {
		return nil, err
	}
	b.Status = StatusCompleted

	if res.HasOverstay && s.watcher != nil {
		if err := s.watcher.CheckRepeatedOverstays(ctx, b.DriverID); err != nil {
			zap.L().Warn("repeated overstay check failed",
				zap.String("driver_id", string(b.DriverID)), zap.Error(err))
		}
	}
	return &Completion{Booking: b, Overstay: res}, nil
}

// Cancel withdraws a driver's booking, returning its slot if it held one.
func (s *Service) Cancel(ctx context.Context, id, driverID types.ID) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.DriverID != driverID {
		return nil, ErrForbidden
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return nil, ErrInvalidState
	}
	err = s.store.InTx(ctx, func(tx *Store) error {
		if err := s.transition(ctx, tx, b, StatusCancelled, "driver", driverID); err != nil {
			return err
		}
		if b.Status.HoldsSlot() {
			return tx.ReleaseSlot(ctx, b.ListingID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.Status = StatusCancelled
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// GetForDriver returns the booking only if it belongs to driverID.
func (s *Service) GetForDriver(ctx context.Context, id, driverID types.ID) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.DriverID != driverID {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID, status Status) ([]Booking, error) {
	if status != "" && !status.Valid() {
		return nil, eris.Wrapf(ErrBadRequest, "unknown status %q", status)
	}
	return s.store.ListByDriver(ctx, driverID, status)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID types.ID, status Status) ([]Booking, error) {
	if status != "" && !status.Valid() {
		return nil, eris.Wrapf(ErrBadRequest, "unknown status %q", status)
	}
	return s.store.ListByOwner(ctx, ownerID, status)
}

func (s *Service) Earnings(ctx context.Context, ownerID types.ID) (*Earnings, error) {
	return s.store.Earnings(ctx, ownerID, s.clock().Add(-earningsWindow))
}

func (s *Service) ownedBy(ctx context.Context, id, ownerID types.ID) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) transition(ctx context.Context, tx *Store, b *Booking, to Status, actorType string, actorID types.ID) error {
	ok, err := tx.UpdateStatus(ctx, b.ID, b.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return tx.AppendEvent(ctx, &Event{
		BookingID:  b.ID,
		FromStatus: b.Status,
		ToStatus:   to,
		ActorType:  actorType,
		ActorID:    &actorID,
		CreatedAt:  s.clock(),
	})
}
