// README: Overstay billing: premium-rate charges for parking past the planned end.
package billing

import (
	"math"
	"time"

	"github.com/rotisserie/eris"

	"parkshare/internal/types"
)

var (
	ErrDivisionByZero = eris.New("booked hours must be positive to derive an hourly rate")
	ErrInvalidInput   = eris.New("invalid billing input")
)

const DefaultOverstayMultiplier = 1.5

// Clock supplies the current time when a stay has not ended yet.
type Clock func() time.Time

// SystemClock reads the wall clock.
var SystemClock Clock = time.Now

// Stay is the billing view of a booking.
type Stay struct {
	PlannedEnd  time.Time
	ActualEnd   *time.Time
	BookedHours int
	BaseAmount  float64
}

type OverstayResult struct {
	HasOverstay    bool      `json:"has_overstay"`
	OverstayHours  int       `json:"overstay_hours"`
	OverstayAmount float64   `json:"overstay_amount"`
	TotalAmount    float64   `json:"total_amount"`
	NormalRate     float64   `json:"normal_rate"`
	OverstayRate   float64   `json:"overstay_rate"`
	ActualEnd      time.Time `json:"actual_end"`
}

// Calculator prices overstays at Multiplier times the booked hourly rate.
type Calculator struct {
	Multiplier float64
}

func NewCalculator(multiplier float64) Calculator {
	if multiplier < 1 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		multiplier = DefaultOverstayMultiplier
	}
	return Calculator{Multiplier: multiplier}
}

// ComputeOverstay prices s with the default 1.5x premium.
func ComputeOverstay(s Stay, now Clock) (OverstayResult, error) {
	return NewCalculator(DefaultOverstayMultiplier).Compute(s, now)
}

// Compute bills every started hour past PlannedEnd at the premium rate.
// Ending exactly on PlannedEnd is on time.
func (c Calculator) Compute(s Stay, now Clock) (OverstayResult, error) {
	if s.BookedHours <= 0 {
		return OverstayResult{}, eris.Wrapf(ErrDivisionByZero, "booked_hours=%d", s.BookedHours)
	}
	if math.IsNaN(s.BaseAmount) || math.IsInf(s.BaseAmount, 0) || s.BaseAmount < 0 {
		return OverstayResult{}, eris.Wrapf(ErrInvalidInput, "base_amount=%v", s.BaseAmount)
	}

	var actualEnd time.Time
	switch {
	case s.ActualEnd != nil:
		actualEnd = *s.ActualEnd
	case now != nil:
		actualEnd = now()
	default:
		actualEnd = SystemClock()
	}

	normalRate := s.BaseAmount / float64(s.BookedHours)
	res := OverstayResult{
		TotalAmount: s.BaseAmount,
		NormalRate:  normalRate,
		ActualEnd:   actualEnd,
	}
	if !actualEnd.After(s.PlannedEnd) {
		return res, nil
	}

	minutes := actualEnd.Sub(s.PlannedEnd).Minutes()
	hours := int(math.Ceil(minutes / 60))
	rate := normalRate * c.Multiplier
	extra := float64(hours) * rate

	res.HasOverstay = true
	res.OverstayHours = hours
	res.OverstayRate = rate
	res.OverstayAmount = types.RoundCents(extra)
	res.TotalAmount = types.RoundCents(s.BaseAmount + extra)
	return res, nil
}
