// README: Google Maps client shared by geocoding and travel estimates.
package maps

import (
	"github.com/rotisserie/eris"
	"googlemaps.github.io/maps"
)

// NewClient creates a Maps client for apiKey. Extra options are passed through
// (tests point the client at a local server with maps.WithBaseURL).
func NewClient(apiKey string, opts ...maps.ClientOption) (*maps.Client, error) {
	if apiKey == "" {
		return nil, eris.New("maps: api key is required")
	}
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, eris.Wrap(err, "maps: create client")
	}
	return client, nil
}
