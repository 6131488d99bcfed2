package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/easing-playground/internal/model"
)

func quad(n int) model.LinearData {
	points := make(model.LinearData, n)
	for i := range points {
		x := model.SamplePosition(i, n)
		points[i] = model.Point{Pos: x, Val: x * x}
	}
	return points
}

func line(n int) model.LinearData {
	points := make(model.LinearData, n)
	for i := range points {
		x := model.SamplePosition(i, n)
		points[i] = model.Point{Pos: x, Val: x}
	}
	return points
}

func TestRun_Linear(t *testing.T) {
	out := Run(line(model.Resolution), Options{Tolerance: 0.001, Precision: 3, Name: "linear"})

	assert.Equal(t, model.LinearData{{Pos: 0, Val: 0}, {Pos: 1, Val: 1}}, out.Points)
	assert.Equal(t, []string{"0", "1"}, out.Parts)
	assert.Equal(t, ":root {\n  --linear-easing: linear(0, 1);\n}", out.Code)
}

func TestRun_DefaultName(t *testing.T) {
	out := Run(line(10), Options{Precision: 2})
	assert.Contains(t, out.Code, "--custom-easing")
}

func TestRun_Empty(t *testing.T) {
	assert.Equal(t, Output{}, Run(nil, Options{Name: "x"}))
}

func TestRun_ToleranceShrinksOutput(t *testing.T) {
	dense := quad(model.Resolution)

	fine := Run(dense, Options{Tolerance: 0.0001, Precision: 4})
	coarse := Run(dense, Options{Tolerance: 0.01, Precision: 4})

	assert.Greater(t, len(fine.Points), len(coarse.Points))
	assert.Equal(t, model.Point{Pos: 0, Val: 0}, coarse.Points[0])
	assert.Equal(t, model.Point{Pos: 1, Val: 1}, coarse.Points[len(coarse.Points)-1])
	for _, l := range strings.Split(fine.Code, "\n") {
		assert.LessOrEqual(t, len(l), 80)
	}
}

func TestPipeline_RecomputesOnEverySet(t *testing.T) {
	p := New(Options{Tolerance: 0.0005, Precision: 4, Name: "quad"})

	var got []Output
	unsubscribe := p.Subscribe(func(o Output) { got = append(got, o) })

	p.SetDense(quad(1000))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Code, "--quad-easing")

	p.SetName("in")
	require.Len(t, got, 2)
	assert.Contains(t, got[1].Code, "--in-easing")

	p.SetIdealDuration(250)
	require.Len(t, got, 3)
	assert.Contains(t, got[2].Code, "--in-duration: 0.25s;")

	p.SetTolerance(0.00005)
	require.Len(t, got, 4)
	assert.Greater(t, len(got[3].Points), len(got[2].Points))

	p.SetPrecision(1)
	require.Len(t, got, 5)
	assert.Equal(t, got[4], p.Output())

	// Setting the same value still recomputes.
	p.SetPrecision(1)
	require.Len(t, got, 6)
	assert.Equal(t, got[4], got[5])

	unsubscribe()
	p.SetPrecision(3)
	assert.Len(t, got, 6)
	assert.Equal(t, 3, p.Options().Precision)
}

func TestPipeline_SubscribersInOrder(t *testing.T) {
	p := New(Options{})

	var order []string
	p.Subscribe(func(Output) { order = append(order, "a") })
	unsubB := p.Subscribe(func(Output) { order = append(order, "b") })
	p.Subscribe(func(Output) { order = append(order, "c") })

	p.SetDense(line(3))
	assert.Equal(t, []string{"a", "b", "c"}, order)

	unsubB()
	unsubB()
	order = nil
	p.SetDense(line(3))
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestPipeline_SetResultRecomputesOnce(t *testing.T) {
	p := New(Options{Tolerance: 0.001, Precision: 3})

	var outputs []Output
	p.Subscribe(func(o Output) { outputs = append(outputs, o) })

	p.SetResult(&model.ProcessResult{Name: "ramp", Points: line(100), Duration: 400})

	require.Len(t, outputs, 1)
	assert.Equal(t, ":root {\n  --ramp-easing: linear(0, 1);\n}", outputs[0].Code)
	assert.Equal(t, "ramp", p.Options().Name)
	assert.InDelta(t, 400, p.Options().IdealDuration, 0)
}

func TestPipeline_SetResultNil(t *testing.T) {
	p := New(Options{Tolerance: 0.001, Precision: 3, Name: "ramp"})
	p.SetDense(line(100))

	calls := 0
	p.Subscribe(func(Output) { calls++ })

	require.NotPanics(t, func() { p.SetResult(nil) })
	assert.Zero(t, calls)
	assert.Equal(t, "ramp", p.Options().Name)
	assert.Equal(t, ":root {\n  --ramp-easing: linear(0, 1);\n}", p.Output().Code)
}
