// README: Misuse report store backed by PostgreSQL.
package misuse

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"parkshare/internal/infra"
	"parkshare/internal/types"
)

const defaultReportLimit = 100

type Store struct {
	db infra.DB
}

func NewStore(db infra.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Report) error {
	var listingID *string
	if r.ListingID != nil {
		v := string(*r.ListingID)
		listingID = &v
	}
	_, err := s.db.Exec(ctx, `
        INSERT INTO misuse_reports (
            id, user_id, listing_id, report_type, severity, description,
            auto_detected, admin_reviewed, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(r.ID), string(r.UserID), listingID, string(r.Type), string(r.Severity), r.Description,
		r.AutoDetected, r.AdminReviewed, r.CreatedAt,
	)
	return eris.Wrap(err, "misuse: insert report")
}

// CountOverstays counts the driver's bookings created since that ran over time.
func (s *Store) CountOverstays(ctx context.Context, driverID types.ID, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM bookings
        WHERE driver_id = $1 AND created_at >= $2 AND overstay_hours > 0`,
		string(driverID), since,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrap(err, "misuse: count overstays")
	}
	return n, nil
}

// HasRecentReport reports whether userID already has a report of this type
// filed since the given time. An empty severity matches any severity.
func (s *Store) HasRecentReport(ctx context.Context, userID types.ID, t ReportType, sev Severity, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM misuse_reports
            WHERE user_id = $1 AND report_type = $2
              AND ($3 = '' OR severity = $3)
              AND created_at >= $4
        )`,
		string(userID), string(t), string(sev), since,
	).Scan(&exists)
	if err != nil {
		return false, eris.Wrap(err, "misuse: recent report lookup")
	}
	return exists, nil
}

// InactiveListings returns active listings without any booking created since.
func (s *Store) InactiveListings(ctx context.Context, since time.Time) ([]InactiveListing, error) {
	rows, err := s.db.Query(ctx, `
        SELECT p.id, p.owner_id, p.title
        FROM parking_listings p
        LEFT JOIN bookings b ON b.listing_id = p.id AND b.created_at >= $1
        WHERE p.is_active = true
        GROUP BY p.id, p.owner_id, p.title
        HAVING COUNT(b.id) = 0
        ORDER BY p.created_at`,
		since,
	)
	if err != nil {
		return nil, eris.Wrap(err, "misuse: inactive listings")
	}
	defer rows.Close()

	out := []InactiveListing{}
	for rows.Next() {
		var id, owner string
		var il InactiveListing
		if err := rows.Scan(&id, &owner, &il.Title); err != nil {
			return nil, eris.Wrap(err, "misuse: scan inactive listing")
		}
		il.ListingID = types.ID(id)
		il.OwnerID = types.ID(owner)
		out = append(out, il)
	}
	return out, eris.Wrap(rows.Err(), "misuse: inactive listings rows")
}

func (s *Store) List(ctx context.Context, f Filter) ([]Report, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultReportLimit
	}
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, listing_id, report_type, severity, description,
               auto_detected, admin_reviewed, COALESCE(review_notes, ''), created_at, reviewed_at
        FROM misuse_reports
        WHERE ($1 = '' OR report_type = $1)
          AND ($2 = '' OR severity = $2)
          AND ($3::boolean IS NULL OR admin_reviewed = $3)
        ORDER BY created_at DESC
        LIMIT $4`,
		string(f.Type), string(f.Severity), f.Reviewed, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "misuse: list reports")
	}
	defer rows.Close()

	out := []Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, eris.Wrap(err, "misuse: scan report")
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "misuse: list rows")
}

func (s *Store) MarkReviewed(ctx context.Context, id types.ID, notes string, at time.Time) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE misuse_reports
        SET admin_reviewed = true, review_notes = $1, reviewed_at = $2
        WHERE id = $3`,
		notes, at, string(id),
	)
	if err != nil {
		return false, eris.Wrap(err, "misuse: mark reviewed")
	}
	return tag.RowsAffected() == 1, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	var id, userID, typ, sev string
	var listingID *string
	err := row.Scan(
		&id, &userID, &listingID, &typ, &sev, &r.Description,
		&r.AutoDetected, &r.AdminReviewed, &r.ReviewNotes, &r.CreatedAt, &r.ReviewedAt,
	)
	if err != nil {
		return nil, err
	}
	r.ID = types.ID(id)
	r.UserID = types.ID(userID)
	if listingID != nil {
		l := types.ID(*listingID)
		r.ListingID = &l
	}
	r.Type = ReportType(typ)
	r.Severity = Severity(sev)
	return &r, nil
}
