// README: Booking store backed by PostgreSQL, including slot accounting on parking_listings.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"parkshare/internal/infra"
	"parkshare/internal/types"
)

const bookingSelect = `
        SELECT b.id, b.listing_id, b.driver_id, p.owner_id, p.title,
               b.status, b.payment_status, b.start_time, b.end_time, b.actual_end_time,
               b.booked_hours, b.base_amount, b.overstay_hours, b.overstay_amount, b.total_amount,
               b.created_at, b.updated_at
        FROM bookings b
        JOIN parking_listings p ON p.id = b.listing_id`

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

// InTx runs fn with a Store bound to a single transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	return infra.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO bookings (
            id, listing_id, driver_id, status, payment_status,
            start_time, end_time, booked_hours, base_amount, total_amount,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, $9, $10,
            $11, $12
        )`,
		string(b.ID), string(b.ListingID), string(b.DriverID),
		string(b.Status), string(b.PaymentStatus),
		b.StartTime, b.EndTime, b.BookedHours, b.BaseAmount, b.TotalAmount,
		b.CreatedAt, b.UpdatedAt,
	)
	return eris.Wrap(err, "booking: insert")
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, bookingSelect+` WHERE b.id = $1`, string(id))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "booking: get")
	}
	return b, nil
}

// ListByDriver returns the driver's bookings, newest first. An empty status matches all.
func (s *Store) ListByDriver(ctx context.Context, driverID types.ID, status Status) ([]Booking, error) {
	rows, err := s.db.Query(ctx, bookingSelect+`
        WHERE b.driver_id = $1 AND ($2 = '' OR b.status = $2)
        ORDER BY b.created_at DESC`,
		string(driverID), string(status),
	)
	if err != nil {
		return nil, eris.Wrap(err, "booking: list by driver")
	}
	return collectBookings(rows)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID types.ID, status Status) ([]Booking, error) {
	rows, err := s.db.Query(ctx, bookingSelect+`
        WHERE p.owner_id = $1 AND ($2 = '' OR b.status = $2)
        ORDER BY b.created_at DESC`,
		string(ownerID), string(status),
	)
	if err != nil {
		return nil, eris.Wrap(err, "booking: list by owner")
	}
	return collectBookings(rows)
}

// UpdateStatus moves a booking from one status to another. It reports false
// when the booking was no longer in the from status.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = $1, updated_at = NOW()
        WHERE id = $2 AND status = $3`,
		string(to), string(id), string(from),
	)
	if err != nil {
		return false, eris.Wrap(err, "booking: update status")
	}
	return tag.RowsAffected() == 1, nil
}

// Complete stores the final charges and marks the booking completed.
func (s *Store) Complete(ctx context.Context, b *Booking, from Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = 'completed',
            actual_end_time = $1,
            overstay_hours = $2,
            overstay_amount = $3,
            total_amount = $4,
            updated_at = NOW()
        WHERE id = $5 AND status = $6`,
		b.ActualEndTime, b.OverstayHours, b.OverstayAmount, b.TotalAmount,
		string(b.ID), string(from),
	)
	if err != nil {
		return false, eris.Wrap(err, "booking: complete")
	}
	return tag.RowsAffected() == 1, nil
}

// ReserveSlot takes one free slot from an active listing. It reports false
// when none is left or the listing was deactivated.
func (s *Store) ReserveSlot(ctx context.Context, listingID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_listings
        SET available_slots = available_slots - 1, updated_at = NOW()
        WHERE id = $1 AND is_active AND available_slots > 0`,
		string(listingID),
	)
	if err != nil {
		return false, eris.Wrap(err, "booking: reserve slot")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) ReleaseSlot(ctx context.Context, listingID types.ID) error {
	_, err := s.db.Exec(ctx, `
        UPDATE parking_listings
        SET available_slots = LEAST(total_slots, available_slots + 1), updated_at = NOW()
        WHERE id = $1`,
		string(listingID),
	)
	return eris.Wrap(err, "booking: release slot")
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	var actorID *string
	if e.ActorID != nil {
		v := string(*e.ActorID)
		actorID = &v
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO booking_state_events (
            booking_id, from_status, to_status, actor_type, actor_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.BookingID), string(e.FromStatus), string(e.ToStatus),
		e.ActorType, actorID, e.CreatedAt,
	)
	return eris.Wrap(err, "booking: append event")
}

// Earnings aggregates paid bookings across the owner's listings. Recent
// covers paid bookings created at or after since, one entry per day.
func (s *Store) Earnings(ctx context.Context, ownerID types.ID, since time.Time) (*Earnings, error) {
	out := &Earnings{ByListing: []ListingEarnings{}, Recent: []DailyEarnings{}}

	err := s.db.QueryRow(ctx, `
        SELECT COALESCE(SUM(b.total_amount), 0)::float8, COUNT(b.id)
        FROM bookings b
        JOIN parking_listings p ON p.id = b.listing_id
        WHERE p.owner_id = $1 AND b.payment_status = 'paid'`,
		string(ownerID),
	).Scan(&out.TotalEarnings, &out.TotalBookings)
	if err != nil {
		return nil, eris.Wrap(err, "booking: earnings total")
	}

	rows, err := s.db.Query(ctx, `
        SELECT p.id, p.title, COUNT(b.id),
               COALESCE(SUM(b.total_amount), 0)::float8,
               COALESCE(AVG(b.total_amount), 0)::float8
        FROM parking_listings p
        LEFT JOIN bookings b ON b.listing_id = p.id AND b.payment_status = 'paid'
        WHERE p.owner_id = $1
        GROUP BY p.id, p.title
        ORDER BY 4 DESC`,
		string(ownerID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "booking: earnings by listing")
	}
	defer rows.Close()
	for rows.Next() {
		var le ListingEarnings
		var id string
		if err := rows.Scan(&id, &le.Title, &le.BookingCount, &le.Earnings, &le.AvgBookingValue); err != nil {
			return nil, eris.Wrap(err, "booking: scan listing earnings")
		}
		le.ListingID = types.ID(id)
		out.ByListing = append(out.ByListing, le)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "booking: earnings by listing rows")
	}

	daily, err := s.db.Query(ctx, `
        SELECT date_trunc('day', b.created_at), COUNT(b.id), COALESCE(SUM(b.total_amount), 0)::float8
        FROM bookings b
        JOIN parking_listings p ON p.id = b.listing_id
        WHERE p.owner_id = $1 AND b.payment_status = 'paid' AND b.created_at >= $2
        GROUP BY 1
        ORDER BY 1`,
		string(ownerID), since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "booking: recent earnings")
	}
	defer daily.Close()
	for daily.Next() {
		var d DailyEarnings
		if err := daily.Scan(&d.Date, &d.Bookings, &d.Earnings); err != nil {
			return nil, eris.Wrap(err, "booking: scan daily earnings")
		}
		out.Recent = append(out.Recent, d)
	}
	if err := daily.Err(); err != nil {
		return nil, eris.Wrap(err, "booking: recent earnings rows")
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (*Booking, error) {
	var b Booking
	var id, listingID, driverID, ownerID, status, payment string
	err := row.Scan(
		&id, &listingID, &driverID, &ownerID, &b.ListingTitle,
		&status, &payment, &b.StartTime, &b.EndTime, &b.ActualEndTime,
		&b.BookedHours, &b.BaseAmount, &b.OverstayHours, &b.OverstayAmount, &b.TotalAmount,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ID = types.ID(id)
	b.ListingID = types.ID(listingID)
	b.DriverID = types.ID(driverID)
	b.OwnerID = types.ID(ownerID)
	b.Status = Status(status)
	b.PaymentStatus = PaymentStatus(payment)
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, eris.Wrap(err, "booking: scan")
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "booking: rows")
	}
	return out, nil
}
