// README: Recommendation value objects: weights, search constraints and scored results.
package recommend

import (
	"parkshare/internal/modules/listing"
)

// Weights is the composite-score weighting triple. The engine uses it as
// given; weights need not sum to 1.
type Weights struct {
	Distance     float64 `json:"distance"`
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
}

func DefaultWeights() Weights {
	return Weights{Distance: 0.5, Price: 0.3, Availability: 0.2}
}

const DefaultRadiusKm = 10.0

// Constraints narrows a search. A nil field means the option is not set.
type Constraints struct {
	RadiusKm          *float64
	MaxPricePerHour   *float64
	MinAvailableSlots *int
	OwnerType         *listing.OwnerType
	Weights           *Weights
}

func DefaultConstraints() Constraints {
	r := DefaultRadiusKm
	return Constraints{RadiusKm: &r}
}

// Breakdown holds the per-axis scores, each in [0, 100].
type Breakdown struct {
	Distance     float64 `json:"distance"`
	Price        float64 `json:"price"`
	Availability float64 `json:"availability"`
}

type ScoreResult struct {
	Listing    listing.Listing `json:"listing"`
	DistanceKm float64         `json:"distance_km"`
	Score      float64         `json:"score"`
	Breakdown  Breakdown       `json:"breakdown"`
}
