// Package geometry measures SVG path data by arc length.
package geometry

import (
	"sort"

	"honnef.co/go/curve"

	"github.com/sakif/easing-playground/internal/apperror"
)

// Accuracy is the arc-length accuracy used when measuring segments.
const Accuracy = 1e-9

// Path is a parsed SVG path with precomputed segment lengths.
type Path struct {
	bez  curve.BezPath
	segs []curve.PathSegment
	// ends[i] is the cumulative length at the end of segs[i].
	ends  []float64
	total float64
}

// Parse parses SVG path data and measures it.
func Parse(d string) (*Path, error) {
	bez, err := ParseSVGPath(d)
	if err != nil {
		return nil, err
	}
	return Measure(bez), nil
}

// Measure precomputes the arc length of every drawn segment of bez.
// Subpath jumps contribute no length.
func Measure(bez curve.BezPath) *Path {
	p := &Path{bez: bez}
	for seg := range bez.Segments() {
		p.total += seg.Arclen(Accuracy)
		p.segs = append(p.segs, seg)
		p.ends = append(p.ends, p.total)
	}
	return p
}

// TotalLength returns the summed arc length of the path.
func (p *Path) TotalLength() float64 {
	return p.total
}

// PointAtLength returns the point at arc length l along the path. l is
// clamped to [0, TotalLength]. A path without segments yields
// apperror.ErrZeroLengthPath.
func (p *Path) PointAtLength(l float64) (curve.Point, error) {
	if len(p.segs) == 0 {
		return curve.Point{}, apperror.ZeroLengthPath()
	}
	l = max(0, min(l, p.total))

	i := sort.SearchFloat64s(p.ends, l)
	if i == len(p.segs) {
		i--
	}
	seg := p.segs[i]
	begin := 0.0
	if i > 0 {
		begin = p.ends[i-1]
	}
	local := l - begin
	if local <= 0 {
		return seg.Start(), nil
	}
	if l >= p.ends[i] {
		return seg.End(), nil
	}
	return seg.Eval(seg.SolveForArclen(local, Accuracy)), nil
}

// BezPath returns the parsed path.
func (p *Path) BezPath() curve.BezPath {
	return p.bez
}

// SVG renders the path back to SVG path data.
func (p *Path) SVG(precision int) string {
	return p.bez.SVG(curve.SVGOptions{MaxPrecision: precision})
}
