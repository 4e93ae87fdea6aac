// README: Daily availability window helpers ("HH:MM" strings).
package listing

import (
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultAvailableFrom  = "00:00"
	defaultAvailableUntil = "23:59"
)

// parseClock converts "HH:MM" into minutes since midnight.
func parseClock(v string) (int, error) {
	t, err := time.Parse("15:04", v)
	if err != nil {
		return 0, eris.Wrapf(ErrBadRequest, "invalid time of day %q", v)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// IsWithinAvailableHours reports whether t (in its own location) falls inside
// the listing's daily window, both ends inclusive. A window whose end is
// before its start spans midnight.
func IsWithinAvailableHours(l Listing, t time.Time) bool {
	start, err := parseClock(l.AvailableFrom)
	if err != nil {
		return false
	}
	end, err := parseClock(l.AvailableUntil)
	if err != nil {
		return false
	}
	now := t.Hour()*60 + t.Minute()
	if start <= end {
		return now >= start && now <= end
	}
	return now >= start || now <= end
}
