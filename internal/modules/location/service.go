// README: Location service keeps the listing GEO index in sync and answers radius prefilter queries.
package location

import (
	"context"

	"go.uber.org/zap"

	"parkshare/internal/types"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) IndexListing(ctx context.Context, id types.ID, pos types.Point) error {
	if err := ValidatePoint(pos); err != nil {
		return err
	}
	return s.store.Add(ctx, Entry{ListingID: id, Position: pos})
}

func (s *Service) RemoveListing(ctx context.Context, id types.ID) error {
	return s.store.Remove(ctx, id)
}

// NearbyListingIDs returns indexed listing ids within radiusKm of origin.
// The index is only a prefilter; exact distances are recomputed by callers.
func (s *Service) NearbyListingIDs(ctx context.Context, origin types.Point, radiusKm float64) ([]types.ID, error) {
	if err := ValidatePoint(origin); err != nil {
		return nil, err
	}
	return s.store.Within(ctx, origin, radiusKm)
}

// Rebuild replaces the whole index, skipping entries with invalid coordinates.
func (s *Service) Rebuild(ctx context.Context, entries []Entry) (int, error) {
	valid := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if err := ValidatePoint(e.Position); err != nil {
			zap.L().Warn("skipping listing with invalid position",
				zap.String("listing_id", string(e.ListingID)),
				zap.Error(err),
			)
			continue
		}
		valid = append(valid, e)
	}
	if err := s.store.Replace(ctx, valid); err != nil {
		return 0, err
	}
	return len(valid), nil
}
