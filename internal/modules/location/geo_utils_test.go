package location

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"parkshare/internal/types"
)

func TestDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      types.Point
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         types.Point{Lat: 25.033, Lng: 121.565},
			b:         types.Point{Lat: 25.033, Lng: 121.565},
			wantKm:    0,
			tolerance: 0.000001,
		},
		{
			name:      "Taipei 101 to Taipei Main Station (~5km)",
			a:         types.Point{Lat: 25.0340, Lng: 121.5645},
			b:         types.Point{Lat: 25.0478, Lng: 121.5170},
			wantKm:    5.0,
			tolerance: 0.5,
		},
		{
			name:      "New York to Los Angeles (~3944km)",
			a:         types.Point{Lat: 40.7128, Lng: -74.0060},
			b:         types.Point{Lat: 34.0522, Lng: -118.2437},
			wantKm:    3944,
			tolerance: 50,
		},
		{
			name:      "one degree of longitude on the equator",
			a:         types.Point{Lat: 0, Lng: 0},
			b:         types.Point{Lat: 0, Lng: 1},
			wantKm:    111.195,
			tolerance: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	pairs := [][2]types.Point{
		{{Lat: 25.0, Lng: 121.0}, {Lat: 26.0, Lng: 122.0}},
		{{Lat: -33.86, Lng: 151.2}, {Lat: 51.5, Lng: -0.12}},
		{{Lat: 89.9, Lng: 0}, {Lat: -89.9, Lng: 180}},
	}
	for _, p := range pairs {
		d1 := DistanceKm(p[0], p[1])
		d2 := DistanceKm(p[1], p[0])
		assert.InDelta(t, d1, d2, 1e-9)
	}
}

func TestDistanceKm_AntipodalIsFinite(t *testing.T) {
	cases := [][2]types.Point{
		{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 180}},
		{{Lat: 90, Lng: 0}, {Lat: -90, Lng: 0}},
		{{Lat: 45, Lng: 30}, {Lat: -45, Lng: -150}},
	}
	halfCircumference := math.Pi * earthRadiusKm
	for _, c := range cases {
		got := DistanceKm(c[0], c[1])
		assert.False(t, math.IsNaN(got), "distance must not be NaN for %v", c)
		assert.InDelta(t, halfCircumference, got, 0.01)
	}
}

func TestValidatePoint(t *testing.T) {
	tests := []struct {
		name    string
		p       types.Point
		wantErr bool
	}{
		{"origin", types.Point{}, false},
		{"valid", types.Point{Lat: 12.97, Lng: 77.59}, false},
		{"bounds", types.Point{Lat: -90, Lng: 180}, false},
		{"nan lat", types.Point{Lat: math.NaN(), Lng: 1}, true},
		{"inf lng", types.Point{Lat: 1, Lng: math.Inf(-1)}, true},
		{"lat out of range", types.Point{Lat: 91, Lng: 0}, true},
		{"lng out of range", types.Point{Lat: 0, Lng: -180.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePoint(tt.p)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidInput), "want ErrInvalidInput, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
