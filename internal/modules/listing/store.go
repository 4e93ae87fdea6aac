// README: Listing store backed by PostgreSQL.
package listing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"parkshare/internal/infra"
	"parkshare/internal/types"
)

const listingColumns = `id, owner_id, title, description, address, latitude, longitude,
       price_per_hour, total_slots, available_slots, owner_type, booking_mode,
       available_hours_start, available_hours_end, is_active, created_at, updated_at`

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, l *Listing) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO parking_listings (
            id, owner_id, title, description, address, latitude, longitude,
            price_per_hour, total_slots, available_slots, owner_type, booking_mode,
            available_hours_start, available_hours_end, is_active, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7,
            $8, $9, $10, $11, $12,
            $13, $14, $15, $16, $17
        )`,
		string(l.ID), string(l.OwnerID), l.Title, l.Description, l.Address,
		l.Position.Lat, l.Position.Lng,
		l.PricePerHour, l.TotalSlots, l.AvailableSlots,
		string(l.OwnerType), string(l.BookingMode),
		l.AvailableFrom, l.AvailableUntil, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	return eris.Wrap(err, "listing: insert")
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Listing, error) {
	row := s.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM parking_listings WHERE id = $1`, string(id))
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "listing: get")
	}
	return l, nil
}

func (s *Store) ListActive(ctx context.Context) ([]Listing, error) {
	rows, err := s.db.Query(ctx, `SELECT `+listingColumns+` FROM parking_listings WHERE is_active = true ORDER BY created_at`)
	if err != nil {
		return nil, eris.Wrap(err, "listing: list active")
	}
	return collectListings(rows)
}

// ListActiveByIDs returns the active listings among ids, in storage order.
func (s *Store) ListActiveByIDs(ctx context.Context, ids []types.ID) ([]Listing, error) {
	if len(ids) == 0 {
		return []Listing{}, nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = string(id)
	}
	rows, err := s.db.Query(ctx, `SELECT `+listingColumns+` FROM parking_listings WHERE id = ANY($1) AND is_active = true ORDER BY created_at`, raw)
	if err != nil {
		return nil, eris.Wrap(err, "listing: list by ids")
	}
	return collectListings(rows)
}

func (s *Store) ListByOwner(ctx context.Context, ownerID types.ID) ([]Listing, error) {
	rows, err := s.db.Query(ctx, `SELECT `+listingColumns+` FROM parking_listings WHERE owner_id = $1 ORDER BY created_at DESC`, string(ownerID))
	if err != nil {
		return nil, eris.Wrap(err, "listing: list by owner")
	}
	return collectListings(rows)
}

// Update writes the mutable fields. Available slots shift by the change in
// total slots and stay within [0, total_slots].
func (s *Store) Update(ctx context.Context, l *Listing) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_listings
        SET title = $1,
            description = $2,
            price_per_hour = $3,
            available_slots = GREATEST(0, LEAST($4, available_slots + ($4 - total_slots))),
            total_slots = $4,
            owner_type = $5,
            booking_mode = $6,
            available_hours_start = $7,
            available_hours_end = $8,
            is_active = $9,
            updated_at = $10
        WHERE id = $11 AND owner_id = $12`,
		l.Title, l.Description, l.PricePerHour, l.TotalSlots,
		string(l.OwnerType), string(l.BookingMode),
		l.AvailableFrom, l.AvailableUntil, l.IsActive, l.UpdatedAt,
		string(l.ID), string(l.OwnerID),
	)
	if err != nil {
		return false, eris.Wrap(err, "listing: update")
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Deactivate(ctx context.Context, id, ownerID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_listings SET is_active = false, updated_at = NOW()
        WHERE id = $1 AND owner_id = $2`,
		string(id), string(ownerID),
	)
	if err != nil {
		return false, eris.Wrap(err, "listing: deactivate")
	}
	return tag.RowsAffected() == 1, nil
}

// ForceDeactivate deactivates a listing regardless of owner.
func (s *Store) ForceDeactivate(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE parking_listings SET is_active = false, updated_at = NOW()
        WHERE id = $1`,
		string(id),
	)
	if err != nil {
		return false, eris.Wrap(err, "listing: force deactivate")
	}
	return tag.RowsAffected() == 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*Listing, error) {
	var l Listing
	var id, ownerID, ownerType, mode string
	err := row.Scan(
		&id, &ownerID, &l.Title, &l.Description, &l.Address,
		&l.Position.Lat, &l.Position.Lng,
		&l.PricePerHour, &l.TotalSlots, &l.AvailableSlots, &ownerType, &mode,
		&l.AvailableFrom, &l.AvailableUntil, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.ID = types.ID(id)
	l.OwnerID = types.ID(ownerID)
	l.OwnerType = OwnerType(ownerType)
	l.BookingMode = BookingMode(mode)
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]Listing, error) {
	defer rows.Close()
	out := []Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, eris.Wrap(err, "listing: scan")
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "listing: rows")
	}
	return out, nil
}
