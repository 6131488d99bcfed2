package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dop251/goja"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
)

// Interrupt values passed to goja.Runtime.Interrupt.
const (
	interruptBudget    = "execution budget exceeded"
	interruptCancelled = "execution cancelled"
)

// durationBinding is the global a script sets to suggest an animation
// duration in milliseconds.
const durationBinding = "duration"

// processScript evaluates script, picks the single global function it
// declares and samples it model.Resolution times over [0, 1].
func (in *Instance) processScript(script string) (*model.ProcessResult, error) {
	in.executions.Add(1)

	bindings, err := in.realm.evaluate(in.cfg.ScriptName, script)
	if err != nil {
		return nil, in.scriptError(err)
	}

	var (
		fn       goja.Callable
		fnName   string
		names    []string
		duration float64
	)
	for _, b := range bindings {
		if call, ok := goja.AssertFunction(b.value); ok {
			fn, fnName = call, b.name
			names = append(names, b.name)
		}
		if b.name == durationBinding {
			duration = durationHint(b.value)
		}
	}
	switch {
	case len(names) == 0:
		return nil, apperror.NoFunctionFound()
	case len(names) > 1:
		return nil, apperror.MultipleFunctionsFound(names)
	}

	points := make(model.LinearData, model.Resolution)
	for i := range points {
		pos := model.SamplePosition(i, model.Resolution)
		ret, err := fn(goja.Undefined(), in.realm.vm.ToValue(pos))
		if err != nil {
			return nil, in.scriptError(err)
		}
		val, err := in.realm.toNumber(ret)
		if err != nil {
			return nil, in.scriptError(err)
		}
		points[i] = model.Point{Pos: pos, Val: val}
	}

	return &model.ProcessResult{
		Name:     kebabCase(fnName),
		Points:   points,
		Duration: duration,
	}, nil
}

// scriptError maps an error returned by the runtime onto the taxonomy.
func (in *Instance) scriptError(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if interrupted.Value() == interruptBudget {
			return apperror.TimedOut(
				fmt.Sprintf("Script exceeded its execution budget of %s", in.cfg.Timeout),
				stackText(interrupted.Stack()),
			)
		}
		return apperror.Cancelled(errors.New(interruptCancelled))
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		return apperror.Execution(in.realm.errorMessage(exc), stackText(exc.Stack()))
	}
	return apperror.Execution(err.Error(), "")
}

// durationHint returns v when it is a positive finite number, else 0.
func durationHint(v goja.Value) float64 {
	if _, ok := v.(*goja.Object); ok || v == nil {
		return 0
	}
	var d float64
	switch n := v.Export().(type) {
	case int64:
		d = float64(n)
	case float64:
		d = n
	default:
		return 0
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

// stackText renders frames one per line, innermost first. Thrown values
// are left out because converting them may run user code.
func stackText(frames []goja.StackFrame) string {
	var b bytes.Buffer
	for i := range frames {
		b.WriteString("\tat ")
		frames[i].Write(&b)
		b.WriteByte('\n')
	}
	return b.String()
}

// kebabCase inserts a hyphen before every internal ASCII capital and lower
// cases it: easeInQuad becomes ease-in-quad.
func kebabCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
