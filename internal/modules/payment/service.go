// README: Payment service simulates a gateway and settles bookings on success.
package payment

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parkshare/internal/modules/booking"
	"parkshare/internal/types"
)

var (
	ErrAlreadyPaid = eris.New("booking already paid")
	ErrNotPayable  = eris.New("booking cannot be paid in its current state")
	ErrBadRequest  = eris.New("invalid payment request")
)

const maxMethodLen = 32

type Bookings interface {
	GetForDriver(ctx context.Context, id, driverID types.ID) (*booking.Booking, error)
}

// Decider decides whether a simulated charge goes through.
type Decider func() bool

// RandomDecider approves roughly successRate of the charges.
func RandomDecider(successRate float64) Decider {
	return func() bool { return rand.Float64() < successRate }
}

type Service struct {
	store    *Store
	bookings Bookings
	decide   Decider
	now      func() time.Time
}

func NewService(store *Store, bookings Bookings, decide Decider) *Service {
	if decide == nil {
		decide = RandomDecider(0.9)
	}
	return &Service{store: store, bookings: bookings, decide: decide, now: time.Now}
}

type SimulateCommand struct {
	BookingID types.ID
	DriverID  types.ID
	Method    string
}

// Simulate charges the booking's current total. A failed charge is still
// recorded and returned without error so the driver can retry.
func (s *Service) Simulate(ctx context.Context, cmd SimulateCommand) (*Payment, error) {
	if cmd.BookingID == "" {
		return nil, eris.Wrap(ErrBadRequest, "booking_id is required")
	}
	method := strings.TrimSpace(cmd.Method)
	if method == "" {
		method = DefaultMethod
	}
	if len(method) > maxMethodLen {
		return nil, eris.Wrapf(ErrBadRequest, "payment_method longer than %d characters", maxMethodLen)
	}

	b, err := s.bookings.GetForDriver(ctx, cmd.BookingID, cmd.DriverID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == booking.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if b.Status == booking.StatusPending || b.Status == booking.StatusCancelled {
		return nil, eris.Wrapf(ErrNotPayable, "status %s", b.Status)
	}

	status := StatusFailed
	if s.decide() {
		status = StatusSuccess
	}
	p := &Payment{
		ID:            types.ID(uuid.NewString()),
		BookingID:     b.ID,
		Amount:        b.TotalAmount,
		Method:        method,
		TransactionID: "DUMMY_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")),
		Status:        status,
		IsDummy:       true,
		CreatedAt:     s.now(),
	}
	if err := s.store.Record(ctx, p); err != nil {
		return nil, err
	}
	zap.L().Info("simulated payment",
		zap.String("booking_id", string(b.ID)),
		zap.String("transaction_id", p.TransactionID),
		zap.String("status", string(p.Status)),
		zap.Float64("amount", p.Amount),
	)
	return p, nil
}

// ListByBooking returns the payments of a booking owned by driverID.
func (s *Service) ListByBooking(ctx context.Context, bookingID, driverID types.ID) ([]Payment, error) {
	if _, err := s.bookings.GetForDriver(ctx, bookingID, driverID); err != nil {
		return nil, err
	}
	return s.store.ListByBooking(ctx, bookingID)
}

func (s *Service) ListByDriver(ctx context.Context, driverID types.ID) ([]DriverPayment, error) {
	return s.store.ListByDriver(ctx, driverID)
}
