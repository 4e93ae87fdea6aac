package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkshare/internal/config"
	"parkshare/internal/modules/listing"
	"parkshare/internal/types"
)

type fakeSource struct {
	all        []listing.Listing
	byIDsCalls [][]types.ID
	scanned    int
}

func (f *fakeSource) ListActive(context.Context) ([]listing.Listing, error) {
	f.scanned++
	return f.all, nil
}

func (f *fakeSource) ListActiveByIDs(_ context.Context, ids []types.ID) ([]listing.Listing, error) {
	f.byIDsCalls = append(f.byIDsCalls, ids)
	want := map[types.ID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []listing.Listing
	for _, l := range f.all {
		if want[l.ID] {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeIndex struct {
	ids       []types.ID
	err       error
	gotRadius float64
}

func (f *fakeIndex) NearbyListingIDs(_ context.Context, _ types.Point, radiusKm float64) ([]types.ID, error) {
	f.gotRadius = radiusKm
	return f.ids, f.err
}

func searchCfg() config.SearchConfig {
	return config.SearchConfig{DefaultRadiusKm: 5, NearbyLimit: 2}
}

func TestService_Search_UsesIndexCandidates(t *testing.T) {
	src := &fakeSource{all: []listing.Listing{
		spot("a", origin, 30, 2, 2),
		spot("b", offsetNorth(origin, 1), 30, 2, 2),
	}}
	idx := &fakeIndex{ids: []types.ID{"b"}}
	svc := NewService(src, idx, searchCfg())

	rs, err := svc.Search(context.Background(), origin, Constraints{})
	require.NoError(t, err)
	assert.Equal(t, []types.ID{"b"}, ids(rs))
	assert.InDelta(t, 5.015, idx.gotRadius, 1e-9)
	assert.Zero(t, src.scanned)
}

func TestService_Search_IndexRadiusCoversBoundary(t *testing.T) {
	edge := spot("edge", offsetNorth(origin, 9.999), 30, 2, 2)
	src := &fakeSource{all: []listing.Listing{edge, spot("outside", offsetNorth(origin, 10.2), 30, 2, 2)}}
	idx := &fakeIndex{ids: []types.ID{"edge", "outside"}}
	svc := NewService(src, idx, searchCfg())

	radius := 10.0
	rs, err := svc.Search(context.Background(), origin, Constraints{RadiusKm: &radius})
	require.NoError(t, err)

	// Redis reports 9.999 km as roughly 10.002 km, so the lookup must reach past it.
	assert.Greater(t, idx.gotRadius, 10.0*6372.797/6371.0)
	assert.Equal(t, []types.ID{"edge"}, ids(rs))
}

func TestService_Search_FallsBackWhenIndexFails(t *testing.T) {
	src := &fakeSource{all: []listing.Listing{
		spot("near", offsetNorth(origin, 1), 30, 2, 2),
		spot("far", offsetNorth(origin, 7), 30, 2, 2),
	}}
	idx := &fakeIndex{err: errors.New("connection refused")}
	svc := NewService(src, idx, searchCfg())

	rs, err := svc.Search(context.Background(), origin, Constraints{})
	require.NoError(t, err)
	assert.Equal(t, []types.ID{"near"}, ids(rs), "configured 5 km default radius applies")
	assert.Equal(t, 1, src.scanned)
}

func TestService_Search_FallsBackWhenIndexEmpty(t *testing.T) {
	src := &fakeSource{all: []listing.Listing{spot("a", origin, 30, 2, 2)}}
	svc := NewService(src, &fakeIndex{}, searchCfg())

	rs, err := svc.Search(context.Background(), origin, Constraints{})
	require.NoError(t, err)
	assert.Len(t, rs, 1)
	assert.Equal(t, 1, src.scanned)
}

func TestService_Search_InvalidOriginSkipsStorage(t *testing.T) {
	src := &fakeSource{}
	idx := &fakeIndex{}
	svc := NewService(src, idx, searchCfg())

	neg := -2.0
	_, err := svc.Search(context.Background(), origin, Constraints{RadiusKm: &neg})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, src.scanned)
	assert.Empty(t, src.byIDsCalls)
}

func TestService_Nearby_Limits(t *testing.T) {
	src := &fakeSource{all: []listing.Listing{
		spot("a", offsetNorth(origin, 3), 30, 2, 2),
		spot("b", origin, 30, 2, 2),
		spot("c", offsetNorth(origin, 1), 30, 2, 2),
	}}
	svc := NewService(src, nil, searchCfg())

	rs, err := svc.Nearby(context.Background(), origin, 0)
	require.NoError(t, err)
	assert.Equal(t, []types.ID{"b", "c"}, ids(rs))

	rs, err = svc.Nearby(context.Background(), origin, 5)
	require.NoError(t, err)
	assert.Len(t, rs, 3)
}
