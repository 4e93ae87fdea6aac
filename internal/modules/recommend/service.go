// README: Search service: Redis radius prefilter, Postgres fallback, then ranking.
package recommend

import (
	"context"

	"go.uber.org/zap"

	"parkshare/internal/config"
	"parkshare/internal/modules/listing"
	"parkshare/internal/types"
)

type ListingSource interface {
	ListActive(ctx context.Context) ([]listing.Listing, error)
	ListActiveByIDs(ctx context.Context, ids []types.ID) ([]listing.Listing, error)
}

// NearbyIndex returns ids of listings within radiusKm of origin.
type NearbyIndex interface {
	NearbyListingIDs(ctx context.Context, origin types.Point, radiusKm float64) ([]types.ID, error)
}

type Service struct {
	listings ListingSource
	index    NearbyIndex
	cfg      config.SearchConfig
}

func NewService(listings ListingSource, index NearbyIndex, cfg config.SearchConfig) *Service {
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = DefaultRadiusKm
	}
	if cfg.NearbyLimit <= 0 {
		cfg.NearbyLimit = 10
	}
	return &Service{listings: listings, index: index, cfg: cfg}
}

func (s *Service) Search(ctx context.Context, origin types.Point, c Constraints) ([]ScoreResult, error) {
	if c.RadiusKm == nil {
		r := s.cfg.DefaultRadiusKm
		c.RadiusKm = &r
	}
	// Reject bad input before touching storage.
	if _, err := FilterAndScore(nil, origin, c); err != nil {
		return nil, err
	}

	candidates, err := s.candidates(ctx, origin, *c.RadiusKm)
	if err != nil {
		return nil, err
	}
	return FilterAndScore(candidates, origin, c)
}

// Nearby ranks listings around origin with default constraints and keeps the best limit.
func (s *Service) Nearby(ctx context.Context, origin types.Point, limit int) ([]ScoreResult, error) {
	if limit <= 0 {
		limit = s.cfg.NearbyLimit
	}
	results, err := s.Search(ctx, origin, Constraints{})
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// prefilterRadius widens the GEO lookup. Redis measures on a slightly larger
// sphere than DistanceKm, so listings right at the edge would be lost;
// FilterAndScore applies the exact radius afterwards.
func prefilterRadius(radiusKm float64) float64 {
	return radiusKm*1.001 + 0.01
}

func (s *Service) candidates(ctx context.Context, origin types.Point, radiusKm float64) ([]listing.Listing, error) {
	if s.index != nil {
		ids, err := s.index.NearbyListingIDs(ctx, origin, prefilterRadius(radiusKm))
		switch {
		case err != nil:
			zap.L().Warn("geo index lookup failed, scanning active listings", zap.Error(err))
		case len(ids) > 0:
			return s.listings.ListActiveByIDs(ctx, ids)
		}
	}
	return s.listings.ListActive(ctx)
}
