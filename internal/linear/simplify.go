// Package linear turns a dense sampled curve into the compact text of a CSS
// linear() easing: Ramer-Douglas-Peucker simplification, rounding, and
// 80-column formatting.
package linear

import (
	"github.com/sakif/easing-playground/internal/model"
)

// span is a pending [first, last] range on the simplification work stack.
type span struct {
	first, last int
}

// Simplify reduces points with the Ramer-Douglas-Peucker algorithm.
//
// The result is a subsequence of points that always keeps the first and the
// last point. An interior point survives when its squared distance to the
// chord of the span it falls in exceeds tolerance². When several points share
// the maximum distance, the earliest one splits the span.
//
// The recursion of the textbook algorithm is replaced by an explicit work
// stack, so near-collinear input of any length cannot overflow the goroutine
// stack. The stack never holds more than len(points) spans.
func Simplify(points model.LinearData, tolerance float64) model.LinearData {
	if len(points) <= 2 {
		return append(model.LinearData(nil), points...)
	}

	sqTolerance := tolerance * tolerance
	last := len(points) - 1

	keep := make([]bool, len(points))
	keep[0], keep[last] = true, true

	stack := []span{{0, last}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		index := -1
		maxSqDist := sqTolerance
		for i := s.first + 1; i < s.last; i++ {
			if d := sqSegDist(points[i], points[s.first], points[s.last]); d > maxSqDist {
				index = i
				maxSqDist = d
			}
		}
		if index < 0 {
			continue
		}

		keep[index] = true
		if s.last-index > 1 {
			stack = append(stack, span{index, s.last})
		}
		if index-s.first > 1 {
			stack = append(stack, span{s.first, index})
		}
	}

	simplified := make(model.LinearData, 0, len(points)/4+2)
	for i, k := range keep {
		if k {
			simplified = append(simplified, points[i])
		}
	}
	return simplified
}

// sqSegDist returns the squared distance from p to the segment p1-p2.
// A zero-length segment degenerates to the distance to p1.
func sqSegDist(p, p1, p2 model.Point) float64 {
	x, y := p1.Pos, p1.Val
	dx, dy := p2.Pos-x, p2.Val-y

	if dx != 0 || dy != 0 {
		t := ((p.Pos-x)*dx + (p.Val-y)*dy) / (dx*dx + dy*dy)
		if t > 1 {
			x, y = p2.Pos, p2.Val
		} else if t > 0 {
			x += dx * t
			y += dy * t
		}
	}

	dx = p.Pos - x
	dy = p.Val - y
	return dx*dx + dy*dy
}
