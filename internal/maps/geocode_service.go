// README: Address geocoding for listings submitted without coordinates.
package maps

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"googlemaps.github.io/maps"

	"parkshare/internal/types"
)

var ErrNoResults = eris.New("maps: address not found")

// GeocodeService resolves addresses with the Google Geocoding API.
type GeocodeService struct {
	client *maps.Client
	region string
}

// NewGeocodeService biases results toward region (a ccTLD such as "in"), if set.
func NewGeocodeService(client *maps.Client, region string) *GeocodeService {
	return &GeocodeService{client: client, region: region}
}

// Geocode returns the coordinates of the best match for address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (types.Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return types.Point{}, eris.Wrap(ErrNoResults, "empty address")
	}
	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  s.region,
	})
	if err != nil {
		return types.Point{}, eris.Wrap(err, "maps: geocode")
	}
	if len(results) == 0 {
		return types.Point{}, eris.Wrapf(ErrNoResults, "%q", address)
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
