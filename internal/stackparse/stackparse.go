// Package stackparse turns the stack text of a script exception into frames.
//
// Recognised frame lines (leading whitespace and "at " are optional):
//
//	at easeInQuad (easing.js:3:11(12))   name and location
//	at easing.js:9:1(40)                 location only (top-level code)
//	at Math.pow (native)                 name only
//
// Anything else (the "Error: message" header, blank lines) is skipped.
package stackparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one call-stack entry, innermost first.
type Frame struct {
	FunctionName string
	FileName     string
	LineNumber   int
	ColumnNumber int
	// HasLocation is false for frames that carry only a function name.
	HasLocation bool
}

var (
	namedFrame  = regexp.MustCompile(`^(?:at\s+)?(.+?)\s+\((.+):(\d+):(\d+)(?:\(\d+\))?\)$`)
	bareFrame   = regexp.MustCompile(`^(?:at\s+)?([^\s()]+):(\d+):(\d+)(?:\(\d+\))?$`)
	nativeFrame = regexp.MustCompile(`^(?:at\s+)?(.+?)\s+\(native\)$`)
)

// Parse returns the frames found in stack, in order.
func Parse(stack string) []Frame {
	var frames []Frame
	for _, line := range strings.Split(stack, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "at ") {
			continue
		}
		if f, ok := parseLine(line); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Top returns the innermost frame of stack.
func Top(stack string) (Frame, bool) {
	frames := Parse(stack)
	if len(frames) == 0 {
		return Frame{}, false
	}
	return frames[0], true
}

func parseLine(line string) (Frame, bool) {
	if m := nativeFrame.FindStringSubmatch(line); m != nil {
		return Frame{FunctionName: m[1]}, true
	}
	if m := namedFrame.FindStringSubmatch(line); m != nil {
		return located(m[1], m[2], m[3], m[4])
	}
	if m := bareFrame.FindStringSubmatch(line); m != nil {
		return located("", m[1], m[2], m[3])
	}
	return Frame{}, false
}

func located(name, file, line, col string) (Frame, bool) {
	l, err := strconv.Atoi(line)
	if err != nil {
		return Frame{FunctionName: name}, name != ""
	}
	c, err := strconv.Atoi(col)
	if err != nil {
		return Frame{FunctionName: name}, name != ""
	}
	return Frame{
		FunctionName: name,
		FileName:     file,
		LineNumber:   l,
		ColumnNumber: c,
		HasLocation:  true,
	}, true
}
