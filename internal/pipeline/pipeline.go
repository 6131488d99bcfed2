// Package pipeline turns a dense sampled curve into CSS: simplify, then
// round, then format.
package pipeline

import (
	"sync"

	"github.com/sakif/easing-playground/internal/linear"
	"github.com/sakif/easing-playground/internal/model"
)

// DefaultName is the property name used when none is given.
const DefaultName = "custom"

// Options are the inputs of one recomputation besides the dense points.
type Options struct {
	// Tolerance is the simplification tolerance, in curve units.
	Tolerance float64
	// Precision is the number of decimals kept on values.
	Precision int
	// Name is the custom property stem: --<name>-easing.
	Name string
	// IdealDuration in milliseconds; 0 omits the duration property.
	IdealDuration float64
}

// Output is the result of one recomputation.
type Output struct {
	Points model.LinearData
	Parts  []string
	Code   string
}

// Run simplifies, rounds and formats dense.
func Run(dense model.LinearData, opts Options) Output {
	if len(dense) == 0 {
		return Output{}
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	points := linear.Round(linear.Simplify(dense, opts.Tolerance), opts.Precision)
	parts := linear.Parts(points)
	return Output{
		Points: points,
		Parts:  parts,
		Code:   linear.FormatParts(parts, name, opts.IdealDuration),
	}
}

// Pipeline holds the current inputs and recomputes the Output every time
// one of them is set. Subscribers are called synchronously, in
// subscription order, after each recomputation and must not call back into
// the Pipeline.
type Pipeline struct {
	mu     sync.Mutex
	dense  model.LinearData
	opts   Options
	out    Output
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Output)
}

// New returns a Pipeline with no dense points and the given options.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Subscribe registers fn and returns a function that removes it.
func (p *Pipeline) Subscribe(fn func(Output)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subs = append(p.subs, subscriber{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

// Output returns the most recent recomputation.
func (p *Pipeline) Output() Output {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out
}

// Options returns the current options.
func (p *Pipeline) Options() Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}

func (p *Pipeline) SetDense(dense model.LinearData) {
	p.update(func() { p.dense = dense })
}

func (p *Pipeline) SetTolerance(tolerance float64) {
	p.update(func() { p.opts.Tolerance = tolerance })
}

func (p *Pipeline) SetPrecision(precision int) {
	p.update(func() { p.opts.Precision = precision })
}

func (p *Pipeline) SetName(name string) {
	p.update(func() { p.opts.Name = name })
}

func (p *Pipeline) SetIdealDuration(ms float64) {
	p.update(func() { p.opts.IdealDuration = ms })
}

func (p *Pipeline) update(set func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set()
	p.out = Run(p.dense, p.opts)
	for _, s := range p.subs {
		s.fn(p.out)
	}
}

// SetResult replaces the dense points, the name and the duration hint of a
// fresh execution in a single recomputation. A nil result is ignored.
func (p *Pipeline) SetResult(r *model.ProcessResult) {
	if r == nil {
		return
	}
	p.update(func() {
		p.dense = r.Points
		p.opts.Name = r.Name
		p.opts.IdealDuration = r.Duration
	})
}
