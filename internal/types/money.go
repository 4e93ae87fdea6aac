// README: Currency helpers; amounts are decimal currency units rounded to cents.
package types

import "math"

// RoundCents rounds v to two decimal places, half away from zero.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
