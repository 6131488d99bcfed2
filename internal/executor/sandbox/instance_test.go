package sandbox

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sakif/easing-playground/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestInstance(t *testing.T, mutate ...func(*Config)) *Instance {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	in, err := NewInstance(cfg, discardLogger())
	require.NoError(t, err)
	return in
}

// handle runs one request on a fresh port and returns the settled reply.
func handle(t *testing.T, in *Instance, req model.Request) model.Reply {
	t.Helper()
	port := NewPort()
	_ = in.Handle(context.Background(), model.SentinelOrigin, req, port)
	require.True(t, port.Settled(), "expected a reply")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	reply, err := port.Receive(ctx)
	require.NoError(t, err)
	return reply
}

func script(src string) model.Request {
	return model.Request{Action: model.ActionProcessScript, Script: src}
}

func TestHandle_EaseInQuad(t *testing.T) {
	reply := handle(t, newTestInstance(t), script(`function easeInQuad(x) { return x * x; }`))
	require.Nil(t, reply.Error)
	require.NotNil(t, reply.Result)

	res := reply.Result
	assert.Equal(t, "ease-in-quad", res.Name)
	assert.Zero(t, res.Duration)
	require.Len(t, res.Points, model.Resolution)
	assert.Equal(t, model.Point{Pos: 0, Val: 0}, res.Points[0])
	assert.Equal(t, model.Point{Pos: 1, Val: 1}, res.Points[model.Resolution-1])
	assert.InDelta(t, 0.25, res.Points[5000].Val, 0.001)

	for i := 1; i < len(res.Points); i++ {
		require.Greater(t, res.Points[i].Pos, res.Points[i-1].Pos)
	}
}

func TestHandle_Duration(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want float64
	}{
		{name: "number", src: `var duration = 300; function f(x) { return x; }`, want: 300},
		{name: "fractional", src: `var duration = 12.5; function f(x) { return x; }`, want: 12.5},
		{name: "zero", src: `var duration = 0; function f(x) { return x; }`, want: 0},
		{name: "NaN", src: `var duration = NaN; function f(x) { return x; }`, want: 0},
		{name: "negative", src: `var duration = -5; function f(x) { return x; }`, want: 0},
		{name: "string", src: `var duration = "300"; function f(x) { return x; }`, want: 0},
		{name: "boxed", src: `var duration = new Number(300); function f(x) { return x; }`, want: 0},
		{name: "missing", src: `function f(x) { return x; }`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := handle(t, newTestInstance(t), script(tt.src))
			require.Nil(t, reply.Error)
			assert.Equal(t, tt.want, reply.Result.Duration)
			assert.Equal(t, "f", reply.Result.Name)
		})
	}
}

func TestHandle_Discovery(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		kind    string
		message string
	}{
		{
			name:    "two functions",
			src:     `function a(x) { return x; } function b(x) { return x; }`,
			kind:    "MultipleFunctionsFound",
			message: "Too many global functions. Found: a, b",
		},
		{
			name:    "function expressions",
			src:     `var easeIn = function (x) { return x; }; var easeOut = (x) => x;`,
			kind:    "MultipleFunctionsFound",
			message: "Too many global functions. Found: easeIn, easeOut",
		},
		{
			name:    "no function",
			src:     `var x = 1;`,
			kind:    "NoFunctionFound",
			message: "No global function found.",
		},
		{
			name:    "empty script",
			src:     ``,
			kind:    "NoFunctionFound",
			message: "No global function found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := handle(t, newTestInstance(t), script(tt.src))
			require.Nil(t, reply.Result)
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.kind, reply.Error.Kind)
			assert.Equal(t, tt.message, reply.Error.Message)
		})
	}
}

func TestHandle_NonFunctionGlobalsIgnored(t *testing.T) {
	reply := handle(t, newTestInstance(t), script(`var scale = 2; var label = "x"; function easeOutCubic(x) { return 1 - Math.pow(1 - x, 3); }`))
	require.Nil(t, reply.Error)
	assert.Equal(t, "ease-out-cubic", reply.Result.Name)
}

func TestHandle_ValueCoercion(t *testing.T) {
	reply := handle(t, newTestInstance(t), script(`function f(x) { return x < 0.5 ? "0.25" : {}; }`))
	require.Nil(t, reply.Error)

	assert.Equal(t, 0.25, reply.Result.Points[0].Val)
	assert.True(t, math.IsNaN(reply.Result.Points[model.Resolution-1].Val))
}

func TestHandle_ThrownError(t *testing.T) {
	src := "function explode(x) {\n  if (x > 0.5) throw new Error('boom');\n  return x;\n}"
	reply := handle(t, newTestInstance(t), script(src))
	require.Nil(t, reply.Result)
	require.NotNil(t, reply.Error)

	assert.Equal(t, "ExecutionFailure", reply.Error.Kind)
	assert.Equal(t, "boom", reply.Error.Message)
	assert.Equal(t, "explode", reply.Error.FunctionName)
	assert.Equal(t, "easing.js", reply.Error.FileName)
	assert.Equal(t, 2, reply.Error.LineNumber)
	assert.Positive(t, reply.Error.ColumnNumber)
}

func TestHandle_ThrownPrimitive(t *testing.T) {
	reply := handle(t, newTestInstance(t), script(`function f(x) { throw "nope"; }`))
	require.NotNil(t, reply.Error)
	assert.Equal(t, "ExecutionFailure", reply.Error.Kind)
	assert.Equal(t, "nope", reply.Error.Message)
}

func TestHandle_SyntaxError(t *testing.T) {
	reply := handle(t, newTestInstance(t), script(`function (`))
	require.NotNil(t, reply.Error)
	assert.Equal(t, "ExecutionFailure", reply.Error.Kind)
	assert.NotEmpty(t, reply.Error.Message)
}

func TestHandle_TimedOut(t *testing.T) {
	in := newTestInstance(t, func(c *Config) { c.Timeout = 50 * time.Millisecond })
	reply := handle(t, in, script(`function spin(x) { while (true) {} }`))
	require.NotNil(t, reply.Error)
	assert.Equal(t, "TimedOut", reply.Error.Kind)
	assert.Equal(t, "spin", reply.Error.FunctionName)
}

func TestHandle_TopLevelLoopTimedOut(t *testing.T) {
	in := newTestInstance(t, func(c *Config) { c.Timeout = 50 * time.Millisecond })
	reply := handle(t, in, script(`for (;;) {}`))
	require.NotNil(t, reply.Error)
	assert.Equal(t, "TimedOut", reply.Error.Kind)
}

func TestHandle_Cancelled(t *testing.T) {
	in := newTestInstance(t, func(c *Config) { c.Timeout = 0 })
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	port := NewPort()
	err := in.Handle(ctx, model.SentinelOrigin, script(`function spin(x) { while (true) {} }`), port)
	require.Error(t, err)

	reply, err := port.Receive(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reply.Error)
	assert.Equal(t, "Cancelled", reply.Error.Kind)
}

func TestHandle_AlreadyUsed(t *testing.T) {
	in := newTestInstance(t)

	first := handle(t, in, script(`function f(x) { return x; }`))
	require.NotNil(t, first.Result)

	second := handle(t, in, script(`function g(x) { return x; }`))
	require.NotNil(t, second.Error)
	assert.Equal(t, "AlreadyUsed", second.Error.Kind)
	assert.Equal(t, "Worker already used", second.Error.Message)
	assert.Empty(t, second.Error.FunctionName)

	assert.Equal(t, int64(1), in.Executions())
}

func TestHandle_AlreadyUsedAfterFailure(t *testing.T) {
	in := newTestInstance(t)

	first := handle(t, in, script(`var x = 1;`))
	require.NotNil(t, first.Error)

	second := handle(t, in, script(`function f(x) { return x; }`))
	require.NotNil(t, second.Error)
	assert.Equal(t, "AlreadyUsed", second.Error.Kind)
	assert.Equal(t, int64(1), in.Executions())
}

func TestHandle_ConcurrentRequestsExecuteOnce(t *testing.T) {
	in := newTestInstance(t)
	const n = 8

	ports := make([]*Port, n)
	var wg sync.WaitGroup
	for i := range ports {
		ports[i] = NewPort()
		wg.Add(1)
		go func(p *Port) {
			defer wg.Done()
			_ = in.Handle(context.Background(), model.SentinelOrigin, script(`function f(x) { return x; }`), p)
		}(ports[i])
	}
	wg.Wait()

	var results, used int
	for _, p := range ports {
		reply, err := p.Receive(context.Background())
		require.NoError(t, err)
		switch {
		case reply.Result != nil:
			results++
		case reply.Error != nil && reply.Error.Kind == "AlreadyUsed":
			used++
		}
	}
	assert.Equal(t, 1, results)
	assert.Equal(t, n-1, used)
	assert.Equal(t, int64(1), in.Executions())
}

func TestHandle_ForeignOriginDropped(t *testing.T) {
	in := newTestInstance(t)

	for _, origin := range []string{"", "https://example.com", "NULL", "null "} {
		port := NewPort()
		err := in.Handle(context.Background(), origin, script(`function f(x) { return x; }`), port)
		assert.NoError(t, err)
		assert.False(t, port.Settled(), "origin %q must be dropped", origin)
	}
	assert.Zero(t, in.Executions())

	reply := handle(t, in, script(`function f(x) { return x; }`))
	assert.NotNil(t, reply.Result, "latch must be untouched by dropped requests")
}

func TestHandle_UnknownActionDropped(t *testing.T) {
	in := newTestInstance(t)

	port := NewPort()
	err := in.Handle(context.Background(), model.SentinelOrigin, model.Request{Action: "format-disk"}, port)
	assert.NoError(t, err)
	assert.False(t, port.Settled())

	reply := handle(t, in, script(`function f(x) { return x; }`))
	assert.NotNil(t, reply.Result)
}

func TestHandle_SVG(t *testing.T) {
	reply := handle(t, newTestInstance(t), model.Request{
		Action: model.ActionProcessSVG,
		Script: "M0,0 C0.4,0 0.2,1 1,1",
	})
	require.Nil(t, reply.Error)
	res := reply.Result

	assert.Equal(t, SVGName, res.Name)
	assert.Zero(t, res.Duration)
	require.Len(t, res.Points, model.Resolution)
	assert.InDelta(t, 0, res.Points[0].Pos, 1e-9)
	assert.InDelta(t, 1, res.Points[model.Resolution-1].Pos, 1e-6)
	assert.InDelta(t, 1, res.Points[model.Resolution-1].Val, 1e-6)
}

func TestHandle_SVGErrors(t *testing.T) {
	tests := []struct {
		name string
		d    string
		kind string
	}{
		{name: "zero length line", d: "M0 0 L0 0", kind: "ZeroLengthPath"},
		{name: "move only", d: "M0.5 0.5", kind: "ZeroLengthPath"},
		{name: "empty", d: "", kind: "ZeroLengthPath"},
		{name: "garbage", d: "hello", kind: "InvalidPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := handle(t, newTestInstance(t), model.Request{Action: model.ActionProcessSVG, Script: tt.d})
			require.NotNil(t, reply.Error)
			assert.Equal(t, tt.kind, reply.Error.Kind)
		})
	}
}

func TestKebabCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"easeInQuad", "ease-in-quad"},
		{"linear", "linear"},
		{"EaseOut", "ease-out"},
		{"myCSSCurve", "my-c-s-s-curve"},
		{"spring2Bounce", "spring2-bounce"},
		{"ease_out", "ease_out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kebabCase(tt.in), tt.in)
	}
}
