package sandbox

import (
	"math"

	"honnef.co/go/curve"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/geometry"
	"github.com/sakif/easing-playground/internal/model"
)

// SVGName is the result name of every sampled SVG path.
const SVGName = "custom"

// Measurer answers arc-length queries about a path.
type Measurer interface {
	TotalLength() float64
	PointAtLength(l float64) (curve.Point, error)
}

// SampleSVG parses SVG path data and samples it with SamplePath.
func SampleSVG(d string) (*model.ProcessResult, error) {
	path, err := geometry.Parse(d)
	if err != nil {
		return nil, err
	}
	return SamplePath(path)
}

// SamplePath takes model.Resolution points at evenly spaced arc lengths.
// Each point is (x, y) with x replaced by the largest x seen so far, which
// keeps positions non-decreasing when the path folds back on itself.
func SamplePath(m Measurer) (*model.ProcessResult, error) {
	total := m.TotalLength()
	if total == 0 {
		return nil, apperror.ZeroLengthPath()
	}

	points := make(model.LinearData, model.Resolution)
	lastX := math.Inf(-1)
	for i := range points {
		pt, err := m.PointAtLength(model.SamplePosition(i, model.Resolution) * total)
		if err != nil {
			return nil, err
		}
		lastX = max(lastX, pt.X)
		points[i] = model.Point{Pos: lastX, Val: pt.Y}
	}

	return &model.ProcessResult{
		Name:   SVGName,
		Points: points,
	}, nil
}
