// README: Misuse report model and report filters.
package misuse

import (
	"time"

	"parkshare/internal/types"
)

type ReportType string

const (
	ReportOverstay        ReportType = "overstay"
	ReportInactiveListing ReportType = "inactive_listing"
	ReportFakeListing     ReportType = "fake_listing"
)

func (t ReportType) Valid() bool {
	switch t {
	case ReportOverstay, ReportInactiveListing, ReportFakeListing:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

type Report struct {
	ID            types.ID   `json:"id"`
	UserID        types.ID   `json:"user_id"`
	ListingID     *types.ID  `json:"listing_id,omitempty"`
	Type          ReportType `json:"report_type"`
	Severity      Severity   `json:"severity"`
	Description   string     `json:"description"`
	AutoDetected  bool       `json:"auto_detected"`
	AdminReviewed bool       `json:"admin_reviewed"`
	ReviewNotes   string     `json:"review_notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

// Filter narrows ListReports. Zero values match everything.
type Filter struct {
	Type     ReportType
	Severity Severity
	Reviewed *bool
	Limit    int
}

// InactiveListing is an active listing that has not been booked recently.
type InactiveListing struct {
	ListingID types.ID
	OwnerID   types.ID
	Title     string
}

type OverstayCheck struct {
	Flagged       bool     `json:"flagged"`
	OverstayCount int      `json:"overstay_count"`
	Severity      Severity `json:"severity,omitempty"`
}

type InactiveScan struct {
	FlaggedCount int      `json:"flagged_count"`
	Listings     []string `json:"listings"`
}
