package geometry

import (
	"honnef.co/go/curve"

	"github.com/sakif/easing-playground/internal/model"
)

// Plot is a curve laid out in SVG user space.
type Plot struct {
	Path curve.BezPath
	// ViewBox covers the whole plot: x from 0 to Size, y from MinY to MinY+Height.
	MinY, Height float64
}

// PlotPoints draws points as a polyline in a Size-wide box. Positions map
// to x, values to y with the axis flipped so that larger values sit higher.
// The vertical extent always includes [0, 1] and grows to fit overshoot.
func PlotPoints(points model.LinearData, size float64) Plot {
	lo, hi := 0.0, 1.0
	for _, p := range points {
		lo = min(lo, p.Val)
		hi = max(hi, p.Val)
	}

	var bez curve.BezPath
	for i, p := range points {
		pt := curve.Pt(p.Pos*size, (1-p.Val)*size)
		if i == 0 {
			bez.MoveTo(pt)
			continue
		}
		bez.LineTo(pt)
	}

	return Plot{
		Path:   bez,
		MinY:   (1 - hi) * size,
		Height: (hi - lo) * size,
	}
}
