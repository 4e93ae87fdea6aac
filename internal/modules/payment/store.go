// README: Payment store backed by PostgreSQL.
package payment

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"parkshare/internal/infra"
	"parkshare/internal/types"
)

const paymentColumns = `p.id, p.booking_id, p.amount, p.payment_method, p.transaction_id, p.payment_status, p.is_dummy, p.created_at`

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

// Record inserts p. A successful payment also flags the booking as paid in
// the same transaction; ErrAlreadyPaid is returned if it already was.
func (s *Store) Record(ctx context.Context, p *Payment) error {
	return infra.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if p.Status == StatusSuccess {
			tag, err := tx.Exec(ctx, `
                UPDATE bookings
                SET payment_status = 'paid',
                    status = CASE WHEN status = 'confirmed' THEN 'active' ELSE status END,
                    updated_at = NOW()
                WHERE id = $1 AND payment_status <> 'paid'`,
				string(p.BookingID),
			)
			if err != nil {
				return eris.Wrap(err, "payment: mark booking paid")
			}
			if tag.RowsAffected() != 1 {
				return ErrAlreadyPaid
			}
		}
		_, err := tx.Exec(ctx, `
            INSERT INTO payments (
                id, booking_id, amount, payment_method, transaction_id, payment_status, is_dummy, created_at
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			string(p.ID), string(p.BookingID), p.Amount, p.Method,
			p.TransactionID, string(p.Status), p.IsDummy, p.CreatedAt,
		)
		return eris.Wrap(err, "payment: insert")
	})
}

func (s *Store) ListByBooking(ctx context.Context, bookingID types.ID) ([]Payment, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+paymentColumns+`
        FROM payments p
        WHERE p.booking_id = $1
        ORDER BY p.created_at DESC`,
		string(bookingID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "payment: list by booking")
	}
	defer rows.Close()

	out := []Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, eris.Wrap(err, "payment: scan")
		}
		out = append(out, *p)
	}
	return out, eris.Wrap(rows.Err(), "payment: rows")
}

func (s *Store) ListByDriver(ctx context.Context, driverID types.ID) ([]DriverPayment, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+paymentColumns+`, b.listing_id, b.start_time, b.end_time, b.booked_hours
        FROM payments p
        JOIN bookings b ON b.id = p.booking_id
        WHERE b.driver_id = $1
        ORDER BY p.created_at DESC`,
		string(driverID),
	)
	if err != nil {
		return nil, eris.Wrap(err, "payment: list by driver")
	}
	defer rows.Close()

	out := []DriverPayment{}
	for rows.Next() {
		var dp DriverPayment
		var id, bookingID, status, listingID string
		if err := rows.Scan(
			&id, &bookingID, &dp.Amount, &dp.Method, &dp.TransactionID, &status, &dp.IsDummy, &dp.CreatedAt,
			&listingID, &dp.StartTime, &dp.EndTime, &dp.BookedHours,
		); err != nil {
			return nil, eris.Wrap(err, "payment: scan driver payment")
		}
		dp.ID = types.ID(id)
		dp.BookingID = types.ID(bookingID)
		dp.Status = Status(status)
		dp.ListingID = types.ID(listingID)
		out = append(out, dp)
	}
	return out, eris.Wrap(rows.Err(), "payment: rows")
}

func scanPayment(row pgx.Row) (*Payment, error) {
	var p Payment
	var id, bookingID, status string
	if err := row.Scan(&id, &bookingID, &p.Amount, &p.Method, &p.TransactionID, &status, &p.IsDummy, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.ID = types.ID(id)
	p.BookingID = types.ID(bookingID)
	p.Status = Status(status)
	return &p, nil
}
