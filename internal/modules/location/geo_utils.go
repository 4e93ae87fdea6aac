// README: Haversine distance and coordinate checks for listing and driver positions.
package location

import (
	"math"

	"github.com/rotisserie/eris"

	"parkshare/internal/types"
)

const earthRadiusKm = 6371.0

// ErrInvalidInput is returned for non-finite or out-of-range coordinates.
var ErrInvalidInput = eris.New("invalid coordinate input")

// DistanceKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func DistanceKm(a, b types.Point) float64 {
	return haversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	// Rounding can push h a hair outside [0, 1] near antipodes.
	s := math.Sqrt(clamp(h, 0, 1))
	return 2 * earthRadiusKm * math.Asin(clamp(s, -1, 1))
}

// ValidatePoint rejects NaN/Inf components and latitudes or longitudes
// outside their valid ranges.
func ValidatePoint(p types.Point) error {
	if !isFinite(p.Lat) || !isFinite(p.Lng) {
		return eris.Wrapf(ErrInvalidInput, "non-finite coordinate (%v, %v)", p.Lat, p.Lng)
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
		return eris.Wrapf(ErrInvalidInput, "coordinate out of range (%v, %v)", p.Lat, p.Lng)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
