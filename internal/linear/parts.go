package linear

import (
	"math"
	"strconv"

	"github.com/sakif/easing-playground/internal/model"
)

// positionEpsilon is how close a position must be to the one linear() would
// infer for it before the explicit percentage is dropped.
const positionEpsilon = 1e-9

// Parts renders each point as a linear() stop: "value position%".
//
// linear() infers positions it is not given: 0% for the first stop, 100%
// for the last, and an even spread for a run of stops between two placed
// neighbours. A position is omitted whenever that inference lands on the
// same value, so evenly sampled curves print as a bare list of values.
func Parts(points model.LinearData) []string {
	n := len(points)
	parts := make([]string, n)
	anchor := 0

	for i, p := range points {
		var implied bool
		switch {
		case i == 0:
			implied = p.Pos == 0
		case i == n-1:
			implied = p.Pos == 1
		default:
			implied = evenlySpaced(points, anchor, i+1)
		}

		parts[i] = formatNumber(p.Val)
		if !implied {
			parts[i] += " " + formatPercent(p.Pos)
		}
		if !implied || i == 0 {
			anchor = i
		}
	}
	return parts
}

// evenlySpaced reports whether every point strictly between from and to sits
// where an even spread between points[from] and points[to] would put it.
func evenlySpaced(points model.LinearData, from, to int) bool {
	start, end := points[from].Pos, points[to].Pos
	step := (end - start) / float64(to-from)
	for k := from + 1; k < to; k++ {
		want := start + float64(k-from)*step
		if math.Abs(points[k].Pos-want) > positionEpsilon {
			return false
		}
	}
	return true
}

func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(pos float64) string {
	// Scaling by 100 reintroduces binary noise (0.07*100 = 7.000000000000001).
	pct := math.Round(pos*100*1e9) / 1e9
	return formatNumber(pct) + "%"
}
