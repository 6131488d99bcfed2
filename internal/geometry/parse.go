package geometry

import (
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
	"honnef.co/go/curve"

	"github.com/sakif/easing-playground/internal/apperror"
)

// arcTolerance bounds the distance between an elliptical arc and the cubic
// approximation it is replaced with.
const arcTolerance = 1e-6

var argCounts = map[byte]int{
	'M': 2,
	'Z': 0,
	'L': 2,
	'H': 1,
	'V': 1,
	'C': 6,
	'S': 4,
	'Q': 4,
	'T': 2,
	'A': 7,
}

// ParseSVGPath parses SVG path data into a BezPath. Arcs are converted to
// cubic Béziers. Errors wrap apperror.ErrInvalidPath.
func ParseSVGPath(d string) (curve.BezPath, error) {
	data := []byte(d)
	i := skipCommaWhitespace(data)
	if i == len(data) {
		return nil, nil
	}
	if !isCommand(data[i]) {
		return nil, apperror.InvalidPath("path data must start with a command")
	}

	var (
		path       curve.BezPath
		args       [7]float64
		cur, start curve.Point
		ctrl       curve.Point
		prevCmd    = byte('z')
		started    bool
	)
	for {
		i += skipCommaWhitespace(data[i:])
		if i >= len(data) {
			break
		}

		cmd := prevCmd
		repeat := true
		if cmd == 'z' || cmd == 'Z' || !isNumberStart(data[i]) {
			cmd = data[i]
			repeat = false
			i++
			i += skipCommaWhitespace(data[i:])
		}

		upper := cmd
		if 'a' <= cmd && cmd <= 'z' {
			upper -= 'a' - 'A'
		}
		n, ok := argCounts[upper]
		if !ok {
			return nil, apperror.InvalidPath(fmt.Sprintf("unknown command '%c' at position %d", cmd, i))
		}
		if !started && upper != 'M' {
			return nil, apperror.InvalidPath("path data must start with a moveto")
		}

		for j := 0; j < n; j++ {
			if upper == 'A' && (j == 3 || j == 4) {
				if i < len(data) && (data[i] == '0' || data[i] == '1') {
					args[j] = float64(data[i] - '0')
					i++
				} else {
					return nil, apperror.InvalidPath(fmt.Sprintf("arc flags must be 0 or 1 in command '%c' at position %d", cmd, i+1))
				}
			} else {
				num, m := strconv.ParseFloat(data[i:])
				if m == 0 {
					if repeat && j == 0 {
						return nil, apperror.InvalidPath(fmt.Sprintf("unknown command '%c' at position %d", data[i], i+1))
					}
					return nil, apperror.InvalidPath(fmt.Sprintf("command '%c' expects %d numbers at position %d", cmd, n, i+1))
				}
				args[j] = num
				i += m
			}
			i += skipCommaWhitespace(data[i:])
		}

		relative := cmd != upper
		abs := func(x, y float64) curve.Point {
			if relative {
				return curve.Pt(cur.X+x, cur.Y+y)
			}
			return curve.Pt(x, y)
		}

		next := cur
		switch upper {
		case 'M':
			next = abs(args[0], args[1])
			path.MoveTo(next)
			start = next
			started = true
			// Coordinate pairs after a moveto are implicit linetos.
			if relative {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'Z':
			path.ClosePath()
			next = start
		case 'L':
			next = abs(args[0], args[1])
			path.LineTo(next)
		case 'H':
			next.X = args[0]
			if relative {
				next.X += cur.X
			}
			path.LineTo(next)
		case 'V':
			next.Y = args[0]
			if relative {
				next.Y += cur.Y
			}
			path.LineTo(next)
		case 'C':
			c1 := abs(args[0], args[1])
			c2 := abs(args[2], args[3])
			next = abs(args[4], args[5])
			path.CubicTo(c1, c2, next)
			ctrl = c2
		case 'S':
			c1 := cur
			if isSmoothCubic(prevCmd) {
				c1 = reflect(ctrl, cur)
			}
			c2 := abs(args[0], args[1])
			next = abs(args[2], args[3])
			path.CubicTo(c1, c2, next)
			ctrl = c2
		case 'Q':
			c := abs(args[0], args[1])
			next = abs(args[2], args[3])
			path.QuadTo(c, next)
			ctrl = c
		case 'T':
			c := cur
			if isSmoothQuad(prevCmd) {
				c = reflect(ctrl, cur)
			}
			next = abs(args[0], args[1])
			path.QuadTo(c, next)
			ctrl = c
		case 'A':
			next = abs(args[5], args[6])
			arcTo(&path, cur, args[0], args[1], args[2], args[3] == 1, args[4] == 1, next)
		}
		prevCmd = cmd
		cur = next
	}
	return path, nil
}

// arcTo appends the SVG elliptical arc from p0 to p1 to path, following the
// endpoint to center conversion of SVG 1.1 appendix F.6.
func arcTo(path *curve.BezPath, p0 curve.Point, rx, ry, rotDeg float64, large, sweep bool, p1 curve.Point) {
	if p0 == p1 {
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		path.LineTo(p1)
		return
	}

	phi := rotDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	dx2 := (p0.X - p1.X) / 2
	dy2 := (p0.Y - p1.Y) / 2
	x1 := cosPhi*dx2 + sinPhi*dy2
	y1 := -sinPhi*dx2 + cosPhi*dy2

	if lambda := x1*x1/(rx*rx) + y1*y1/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	rx2, ry2 := rx*rx, ry*ry
	num := rx2*ry2 - rx2*y1*y1 - ry2*x1*x1
	den := rx2*y1*y1 + ry2*x1*x1
	coef := 0.0
	if den != 0 {
		coef = math.Sqrt(math.Max(0, num/den))
	}
	if large == sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx

	center := curve.Pt(
		cosPhi*cx1-sinPhi*cy1+(p0.X+p1.X)/2,
		sinPhi*cx1+cosPhi*cy1+(p0.Y+p1.Y)/2,
	)

	startAngle := math.Atan2((y1-cy1)/ry, (x1-cx1)/rx)
	sweepAngle := math.Atan2((-y1-cy1)/ry, (-x1-cx1)/rx) - startAngle
	if sweep && sweepAngle < 0 {
		sweepAngle += 2 * math.Pi
	} else if !sweep && sweepAngle > 0 {
		sweepAngle -= 2 * math.Pi
	}

	arc := curve.Arc{
		Center:     center,
		Radii:      curve.Vec(rx, ry),
		StartAngle: startAngle,
		SweepAngle: sweepAngle,
		XRotation:  phi,
	}
	for el := range arc.PathElements(arcTolerance) {
		if el.Kind == curve.MoveToKind {
			continue
		}
		path.Push(el)
	}
}

func reflect(ctrl, about curve.Point) curve.Point {
	return curve.Pt(2*about.X-ctrl.X, 2*about.Y-ctrl.Y)
}

func isSmoothCubic(cmd byte) bool {
	return cmd == 'C' || cmd == 'c' || cmd == 'S' || cmd == 's'
}

func isSmoothQuad(cmd byte) bool {
	return cmd == 'Q' || cmd == 'q' || cmd == 'T' || cmd == 't'
}

func isCommand(c byte) bool {
	_, ok := argCounts[c&^0x20]
	return ok
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+'
}

func skipCommaWhitespace(data []byte) int {
	i := 0
	for i < len(data) && (data[i] == ' ' || data[i] == ',' || data[i] == '\n' || data[i] == '\r' || data[i] == '\t' || data[i] == '\f') {
		i++
	}
	return i
}
