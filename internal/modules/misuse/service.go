// README: Misuse service files reports for overstays, idle listings and fake listings.
package misuse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"parkshare/internal/config"
	"parkshare/internal/modules/listing"
	"parkshare/internal/types"
)

var (
	ErrNotFound   = eris.New("misuse report not found")
	ErrBadRequest = eris.New("invalid misuse report filter")
)

const day = 24 * time.Hour

// Listings is what admin flagging needs from the listing module.
type Listings interface {
	Get(ctx context.Context, id types.ID) (*listing.Listing, error)
	ForceDeactivate(ctx context.Context, id types.ID) error
}

type Service struct {
	store    *Store
	listings Listings
	cfg      config.MisuseConfig
	now      func() time.Time
}

func NewService(store *Store, listings Listings, cfg config.MisuseConfig) *Service {
	return &Service{store: store, listings: listings, cfg: cfg, now: time.Now}
}

// EvaluateOverstays files a report when the driver overstayed at least
// OverstayThreshold times within the window. A report of the same severity
// inside the window is not repeated.
func (s *Service) EvaluateOverstays(ctx context.Context, driverID types.ID) (OverstayCheck, error) {
	since := s.now().Add(-time.Duration(s.cfg.OverstayWindowDays) * day)
	n, err := s.store.CountOverstays(ctx, driverID, since)
	if err != nil {
		return OverstayCheck{}, err
	}
	res := OverstayCheck{OverstayCount: n}
	if n < s.cfg.OverstayThreshold {
		return res, nil
	}

	res.Flagged = true
	res.Severity = SeverityMedium
	if n >= s.cfg.OverstayHighThreshold {
		res.Severity = SeverityHigh
	}
	dup, err := s.store.HasRecentReport(ctx, driverID, ReportOverstay, res.Severity, since)
	if err != nil {
		return res, err
	}
	if dup {
		return res, nil
	}
	err = s.store.Create(ctx, &Report{
		ID:           types.ID(uuid.NewString()),
		UserID:       driverID,
		Type:         ReportOverstay,
		Severity:     res.Severity,
		Description:  fmt.Sprintf("Driver has %d overstays in last %d days", n, s.cfg.OverstayWindowDays),
		AutoDetected: true,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return res, err
	}
	zap.L().Info("driver flagged for repeated overstays",
		zap.String("driver_id", string(driverID)), zap.Int("overstays", n), zap.String("severity", string(res.Severity)))
	return res, nil
}

// CheckRepeatedOverstays runs EvaluateOverstays for booking completion.
func (s *Service) CheckRepeatedOverstays(ctx context.Context, driverID types.ID) error {
	_, err := s.EvaluateOverstays(ctx, driverID)
	return err
}

// CheckInactiveListings files a low-severity report for each active listing
// with no bookings in InactiveDays. Owners reported within the cooldown are skipped.
func (s *Service) CheckInactiveListings(ctx context.Context) (InactiveScan, error) {
	now := s.now()
	idle, err := s.store.InactiveListings(ctx, now.Add(-time.Duration(s.cfg.InactiveDays)*day))
	if err != nil {
		return InactiveScan{}, err
	}
	cooldown := now.Add(-time.Duration(s.cfg.ReportCooldownDays) * day)

	res := InactiveScan{Listings: []string{}}
	for _, il := range idle {
		dup, err := s.store.HasRecentReport(ctx, il.OwnerID, ReportInactiveListing, "", cooldown)
		if err != nil {
			return res, err
		}
		if dup {
			continue
		}
		listingID := il.ListingID
		err = s.store.Create(ctx, &Report{
			ID:           types.ID(uuid.NewString()),
			UserID:       il.OwnerID,
			ListingID:    &listingID,
			Type:         ReportInactiveListing,
			Severity:     SeverityLow,
			Description:  fmt.Sprintf("Listing %q has no bookings in %d days", il.Title, s.cfg.InactiveDays),
			AutoDetected: true,
			CreatedAt:    now,
		})
		if err != nil {
			return res, err
		}
		res.FlaggedCount++
		res.Listings = append(res.Listings, il.Title)
	}
	return res, nil
}

// FlagSuspiciousListing analyses l and files a report when it looks fake.
func (s *Service) FlagSuspiciousListing(ctx context.Context, l listing.Listing) (Analysis, error) {
	a := DetectSuspiciousListing(l)
	if !a.IsSuspicious {
		return a, nil
	}
	listingID := l.ID
	err := s.store.Create(ctx, &Report{
		ID:           types.ID(uuid.NewString()),
		UserID:       l.OwnerID,
		ListingID:    &listingID,
		Type:         ReportFakeListing,
		Severity:     SeverityMedium,
		Description:  fmt.Sprintf("Listing %q flagged: %s", l.Title, strings.Join(a.Reasons, ", ")),
		AutoDetected: true,
		CreatedAt:    s.now(),
	})
	return a, err
}

// ScreenListing lets the listing service screen new listings.
func (s *Service) ScreenListing(ctx context.Context, l listing.Listing) error {
	_, err := s.FlagSuspiciousListing(ctx, l)
	return err
}

// FlagListing records an admin's fake-listing report and takes the listing down.
func (s *Service) FlagListing(ctx context.Context, listingID types.ID, reason string) (*Report, error) {
	l, err := s.listings.Get(ctx, listingID)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = fmt.Sprintf("Listing %q flagged by admin", l.Title)
	}
	now := s.now()
	r := &Report{
		ID:            types.ID(uuid.NewString()),
		UserID:        l.OwnerID,
		ListingID:     &l.ID,
		Type:          ReportFakeListing,
		Severity:      SeverityMedium,
		Description:   reason,
		AdminReviewed: true,
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	if err := s.listings.ForceDeactivate(ctx, l.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListReports(ctx context.Context, f Filter) ([]Report, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, eris.Wrapf(ErrBadRequest, "unknown report type %q", f.Type)
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return nil, eris.Wrapf(ErrBadRequest, "unknown severity %q", f.Severity)
	}
	return s.store.List(ctx, f)
}

func (s *Service) MarkReviewed(ctx context.Context, id types.ID, notes string) error {
	ok, err := s.store.MarkReviewed(ctx, id, strings.TrimSpace(notes), s.now())
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// RunScanner checks for inactive listings on every tick until ctx is done.
func (s *Service) RunScanner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = day
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.CheckInactiveListings(ctx)
			if err != nil {
				zap.L().Error("inactive listing scan failed", zap.Error(err))
				continue
			}
			zap.L().Info("inactive listing scan finished", zap.Int("flagged", res.FlaggedCount))
		}
	}
}
