// README: Driving estimates from a driver to a parking listing.
package maps

import (
	"context"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"googlemaps.github.io/maps"

	"parkshare/internal/types"
)

// RouteService handles Directions API lookups.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(client *maps.Client) *RouteService {
	return &RouteService{client: client}
}

type Estimate struct {
	Duration     time.Duration `json:"duration"`
	DurationText string        `json:"duration_text"`
	DistanceText string        `json:"distance_text"`
	Meters       int           `json:"distance_meters"`
}

// TravelEstimate returns the driving time and distance from origin to destination.
func (s *RouteService) TravelEstimate(ctx context.Context, origin, destination types.Point) (Estimate, error) {
	routes, _, err := s.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      coords(origin),
		Destination: coords(destination),
		Mode:        maps.TravelModeDriving,
	})
	if err != nil {
		return Estimate{}, eris.Wrap(err, "maps: directions")
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return Estimate{}, eris.New("maps: no route found")
	}

	leg := routes[0].Legs[0]
	return Estimate{
		Duration:     leg.Duration,
		DurationText: leg.Duration.Round(time.Minute).String(),
		DistanceText: leg.Distance.HumanReadable,
		Meters:       leg.Distance.Meters,
	}, nil
}

func coords(p types.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
