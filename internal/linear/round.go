package linear

import (
	"math"

	"github.com/sakif/easing-playground/internal/model"
)

// MinPositionDigits is the least number of decimals kept on the position
// axis. Positions are printed as percentages, so two decimals is a whole
// percent.
const MinPositionDigits = 2

// Round rounds every point: values to precision decimals, positions to
// max(precision, MinPositionDigits) decimals. Negative precision counts as 0.
//
// ROUNDING MODE:
// Both axes use scale, math.Round, unscale. math.Round breaks ties away from
// zero, so 0.125 at 2 digits is 0.13 and -0.125 is -0.13.
func Round(points model.LinearData, precision int) model.LinearData {
	precision = max(precision, 0)
	posDigits := max(precision, MinPositionDigits)

	rounded := make(model.LinearData, len(points))
	for i, p := range points {
		rounded[i] = model.Point{
			Pos: roundTo(p.Pos, posDigits),
			Val: roundTo(p.Val, precision),
		}
	}
	return rounded
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	r := math.Round(v*scale) / scale
	if math.IsInf(r, 0) || math.IsNaN(r) {
		// v*scale overflowed; v already has fewer decimals than asked for.
		return v
	}
	return r
}
