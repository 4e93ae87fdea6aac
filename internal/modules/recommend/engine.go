// README: Pure filter-and-rank engine for parking listings around an origin.
package recommend

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"parkshare/internal/modules/listing"
	"parkshare/internal/modules/location"
	"parkshare/internal/types"
)

var ErrInvalidInput = eris.New("invalid search input")

// FilterAndScore drops listings that fail any constraint, scores the rest
// and returns them best first. Equal scores keep their input order.
func FilterAndScore(listings []listing.Listing, origin types.Point, c Constraints) ([]ScoreResult, error) {
	if !finite(origin.Lat) || !finite(origin.Lng) {
		return nil, eris.Wrapf(ErrInvalidInput, "origin (%v, %v) is not a finite coordinate", origin.Lat, origin.Lng)
	}
	if err := validateConstraints(c); err != nil {
		return nil, err
	}

	radius := DefaultRadiusKm
	if c.RadiusKm != nil {
		radius = *c.RadiusKm
	}
	w := DefaultWeights()
	if c.Weights != nil {
		w = *c.Weights
	}

	out := make([]ScoreResult, 0, len(listings))
	for _, l := range listings {
		if !l.IsActive {
			continue
		}
		d := location.DistanceKm(origin, l.Position)
		if d > radius {
			continue
		}
		if c.MaxPricePerHour != nil && l.PricePerHour > *c.MaxPricePerHour {
			continue
		}
		if c.MinAvailableSlots != nil && l.AvailableSlots < *c.MinAvailableSlots {
			continue
		}
		if c.OwnerType != nil && l.OwnerType != *c.OwnerType {
			continue
		}
		out = append(out, score(l, d, w))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

// ScoreOne scores a single listing without applying any filter.
func ScoreOne(l listing.Listing, origin types.Point, w Weights) (ScoreResult, error) {
	if !finite(origin.Lat) || !finite(origin.Lng) {
		return ScoreResult{}, eris.Wrapf(ErrInvalidInput, "origin (%v, %v) is not a finite coordinate", origin.Lat, origin.Lng)
	}
	return score(l, location.DistanceKm(origin, l.Position), w), nil
}

func score(l listing.Listing, distanceKm float64, w Weights) ScoreResult {
	b := Breakdown{
		Distance:     math.Max(0, 100-distanceKm*10),
		Price:        math.Max(0, 100-l.PricePerHour*0.5),
		Availability: availabilityScore(l.AvailableSlots, l.TotalSlots),
	}
	// Sub-scores are rounded for display only; the composite uses full precision.
	composite := b.Distance*w.Distance + b.Price*w.Price + b.Availability*w.Availability
	return ScoreResult{
		Listing:    l,
		DistanceKm: round2(distanceKm),
		Score:      round2(composite),
		Breakdown: Breakdown{
			Distance:     round2(b.Distance),
			Price:        round2(b.Price),
			Availability: round2(b.Availability),
		},
	}
}

// A fully booked listing scores 0 whatever its capacity.
func availabilityScore(available, total int) float64 {
	if available <= 0 || total <= 0 {
		return 0
	}
	return float64(available) / float64(total) * 100
}

func validateConstraints(c Constraints) error {
	if c.RadiusKm != nil && (!finite(*c.RadiusKm) || *c.RadiusKm < 0) {
		return eris.Wrapf(ErrInvalidInput, "radius_km must be >= 0, got %v", *c.RadiusKm)
	}
	if c.MaxPricePerHour != nil && (math.IsNaN(*c.MaxPricePerHour) || *c.MaxPricePerHour < 0) {
		return eris.Wrapf(ErrInvalidInput, "max_price_per_hour must be >= 0, got %v", *c.MaxPricePerHour)
	}
	if c.MinAvailableSlots != nil && *c.MinAvailableSlots < 0 {
		return eris.Wrapf(ErrInvalidInput, "min_available_slots must be >= 0, got %d", *c.MinAvailableSlots)
	}
	if c.OwnerType != nil && !c.OwnerType.Valid() {
		return eris.Wrapf(ErrInvalidInput, "unknown owner_type %q", *c.OwnerType)
	}
	if w := c.Weights; w != nil && (!finite(w.Distance) || !finite(w.Price) || !finite(w.Availability)) {
		return eris.Wrap(ErrInvalidInput, "score weights must be finite")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
