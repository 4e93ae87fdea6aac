package listing

import (
	"testing"
	"time"
)

func TestIsWithinAvailableHours(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC) }
	day := Listing{AvailableFrom: "08:00", AvailableUntil: "20:30"}
	night := Listing{AvailableFrom: "22:00", AvailableUntil: "06:00"}

	cases := []struct {
		name string
		l    Listing
		t    time.Time
		want bool
	}{
		{"before opening", day, at(7, 59), false},
		{"at opening", day, at(8, 0), true},
		{"midday", day, at(13, 15), true},
		{"at closing", day, at(20, 30), true},
		{"after closing", day, at(20, 31), false},
		{"overnight late", night, at(23, 0), true},
		{"overnight early", night, at(5, 59), true},
		{"overnight gap", night, at(12, 0), false},
		{"malformed window", Listing{AvailableFrom: "8am", AvailableUntil: "20:00"}, at(9, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsWithinAvailableHours(tc.l, tc.t); got != tc.want {
				t.Errorf("IsWithinAvailableHours() = %v, want %v", got, tc.want)
			}
		})
	}
}
