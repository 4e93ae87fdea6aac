// README: Location store backed by a Redis GEO set of active listing positions.
package location

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"parkshare/internal/types"
)

// Entry is a single indexed listing position.
type Entry struct {
	ListingID types.ID
	Position  types.Point
}

type Store struct {
	redis *redis.Client
	key   string
}

func NewStore(redis *redis.Client, key string) *Store {
	return &Store{redis: redis, key: key}
}

func (s *Store) Add(ctx context.Context, e Entry) error {
	err := s.redis.GeoAdd(ctx, s.key, &redis.GeoLocation{
		Name:      string(e.ListingID),
		Longitude: e.Position.Lng,
		Latitude:  e.Position.Lat,
	}).Err()
	return eris.Wrap(err, "location: geoadd")
}

func (s *Store) Remove(ctx context.Context, id types.ID) error {
	return eris.Wrap(s.redis.ZRem(ctx, s.key, string(id)).Err(), "location: zrem")
}

// Within returns listing ids within radiusKm of p, closest first.
func (s *Store) Within(ctx context.Context, p types.Point, radiusKm float64) ([]types.ID, error) {
	results, err := s.redis.GeoSearch(ctx, s.key, &redis.GeoSearchQuery{
		Longitude:  p.Lng,
		Latitude:   p.Lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
	}).Result()
	if err != nil {
		return nil, eris.Wrap(err, "location: geosearch")
	}
	ids := make([]types.ID, len(results))
	for i, r := range results {
		ids[i] = types.ID(r)
	}
	return ids, nil
}

// Replace atomically swaps the index contents for entries.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(entries) > 0 {
		locs := make([]*redis.GeoLocation, len(entries))
		for i, e := range entries {
			locs[i] = &redis.GeoLocation{
				Name:      string(e.ListingID),
				Longitude: e.Position.Lng,
				Latitude:  e.Position.Lat,
			}
		}
		pipe.GeoAdd(ctx, s.key, locs...)
	}
	_, err := pipe.Exec(ctx)
	return eris.Wrap(err, "location: replace index")
}
