// Package model defines the data structures shared by the sandbox, the
// curve pipeline and the HTTP layer.
package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Resolution is the number of samples taken from an easing function or an
// SVG path before any simplification happens.
const Resolution = 10_000

// Point is one sample of a curve: Pos is the normalised input position,
// Val is the output value at that position.
//
// JSON SHAPE:
// A Point marshals as a two element array, [pos, val], so a LinearData is a
// plain array of pairs on the wire:
//
//	[[0,0],[0.5,0.25],[1,1]]
type Point struct {
	Pos float64
	Val float64
}

// LinearData is an ordered sequence of points. Producers fill it once and
// never modify it afterwards; every transformation returns a new slice.
type LinearData []Point

// MarshalJSON implements json.Marshaler.
// encoding/json refuses NaN and ±Inf, so non-finite numbers become null.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*float64{finiteOrNil(p.Pos), finiteOrNil(p.Val)})
}

// UnmarshalJSON implements json.Unmarshaler. A null coordinate decodes as NaN.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []*float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("model: decoding point: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("model: point must have 2 coordinates, got %d", len(pair))
	}
	p.Pos = valueOrNaN(pair[0])
	p.Val = valueOrNaN(pair[1])
	return nil
}

func finiteOrNil(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func valueOrNaN(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

// SamplePosition returns the position of sample i out of n evenly spaced
// samples covering [0, 1] inclusive.
func SamplePosition(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}
