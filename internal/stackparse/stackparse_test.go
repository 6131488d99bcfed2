package stackparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		stack string
		want  []Frame
	}{
		{
			name:  "named frames with program counters",
			stack: "Error: boom\n\tat explode (easing.js:2:9(3))\n\tat easeOut (easing.js:5:10(7))\n",
			want: []Frame{
				{FunctionName: "explode", FileName: "easing.js", LineNumber: 2, ColumnNumber: 9, HasLocation: true},
				{FunctionName: "easeOut", FileName: "easing.js", LineNumber: 5, ColumnNumber: 10, HasLocation: true},
			},
		},
		{
			name:  "top-level frame without a name",
			stack: "ReferenceError: x is not defined\n\tat easing.js:1:1(0)",
			want: []Frame{
				{FileName: "easing.js", LineNumber: 1, ColumnNumber: 1, HasLocation: true},
			},
		},
		{
			name:  "native frame keeps only the name",
			stack: "TypeError: nope\n\tat Math.pow (native)\n\tat f (easing.js:1:20(4))",
			want: []Frame{
				{FunctionName: "Math.pow"},
				{FunctionName: "f", FileName: "easing.js", LineNumber: 1, ColumnNumber: 20, HasLocation: true},
			},
		},
		{
			name:  "file names with colons",
			stack: "\tat f (<eval>:3:4(5))",
			want: []Frame{
				{FunctionName: "f", FileName: "<eval>", LineNumber: 3, ColumnNumber: 4, HasLocation: true},
			},
		},
		{
			name:  "no frames",
			stack: "Error: only a message",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Parse(tt.stack)); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTop(t *testing.T) {
	if _, ok := Top(""); ok {
		t.Error("Top(\"\") reported a frame")
	}

	f, ok := Top("Error\n\tat inner (a.js:1:2(0))\n\tat outer (a.js:3:4(0))")
	if !ok || f.FunctionName != "inner" {
		t.Errorf("Top() = %+v, %v; want inner", f, ok)
	}
}
