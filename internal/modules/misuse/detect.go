// README: Heuristics that score how likely a listing is fake.
package misuse

import (
	"strings"
	"unicode/utf8"

	"parkshare/internal/modules/listing"
)

const (
	suspiciousThreshold  = 3
	minRealisticPrice    = 10.0
	minTitleLength       = 10
	minDescriptionLength = 20
	maxResidentialSlots  = 5
)

type Analysis struct {
	IsSuspicious bool     `json:"is_suspicious"`
	Points       int      `json:"suspicion_points"`
	Reasons      []string `json:"reasons"`
}

// DetectSuspiciousListing scores a listing against simple fake-listing signals.
func DetectSuspiciousListing(l listing.Listing) Analysis {
	a := Analysis{Reasons: []string{}}
	if l.PricePerHour < minRealisticPrice {
		a.Points += 2
		a.Reasons = append(a.Reasons, "Price unusually low")
	}
	if utf8.RuneCountInString(strings.TrimSpace(l.Title)) < minTitleLength {
		a.Points++
		a.Reasons = append(a.Reasons, "Title too short")
	}
	if utf8.RuneCountInString(strings.TrimSpace(l.Description)) < minDescriptionLength {
		a.Points++
		a.Reasons = append(a.Reasons, "Description missing or too short")
	}
	if l.OwnerType == listing.OwnerResidential && l.TotalSlots > maxResidentialSlots {
		a.Points += 2
		a.Reasons = append(a.Reasons, "Unrealistic slot count for a residential space")
	}
	a.IsSuspicious = a.Points >= suspiciousThreshold
	return a
}
