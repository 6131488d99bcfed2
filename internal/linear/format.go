package linear

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sakif/easing-playground/internal/model"
)

const (
	// LineLength is the column budget of every emitted line.
	LineLength = 80
	lineIndent = "    "
)

// durationPrinter formats seconds the way en-US readers expect
// ("1,234.5"), with at most three fraction digits.
var durationPrinter = message.NewPrinter(language.AmericanEnglish)

// Format renders points as a CSS custom property holding a linear() easing.
// See FormatParts.
func Format(points model.LinearData, name string, idealDuration float64) string {
	return FormatParts(Parts(points), name, idealDuration)
}

// FormatParts packs parts into a :root block.
//
// Parts are packed greedily, left to right: a part joins the current line
// unless the indented line plus its trailing comma would exceed LineLength.
// When everything fits on one line and the whole declaration does too, the
// compact form is used:
//
//	:root {
//	  --name-easing: linear(0, 0.25, 1);
//	}
//
// Otherwise each packed line is indented inside the linear() call, and a
// --name-duration declaration in seconds follows when idealDuration (in
// milliseconds) is non-zero.
func FormatParts(parts []string, name string, idealDuration float64) string {
	if len(parts) == 0 {
		return ""
	}

	const (
		outputStart = ":root {\n"
		outputEnd   = "\n}"
		linearEnd   = ");"
	)
	linearStart := "  --" + name + "-easing: linear("

	lines := pack(parts)

	if len(lines) == 1 && len(linearStart)+len(lines[0])+len(linearEnd) < LineLength {
		return outputStart + linearStart + lines[0] + linearEnd + outputEnd
	}

	var b strings.Builder
	b.WriteString(outputStart)
	b.WriteString(linearStart)
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(lineIndent)
		b.WriteString(line)
	}
	b.WriteString("\n  ")
	b.WriteString(linearEnd)

	if idealDuration != 0 && !math.IsNaN(idealDuration) {
		b.WriteString("\n  --")
		b.WriteString(name)
		b.WriteString("-duration: ")
		b.WriteString(formatSeconds(idealDuration / 1000))
		b.WriteString("s;")
	}

	b.WriteString(outputEnd)
	return b.String()
}

// pack joins parts with ", " into lines that, once indented and followed by
// a comma, stay within LineLength. Every line but the last ends in ",".
// A single part longer than the budget gets a line of its own.
func pack(parts []string) []string {
	var lines []string
	line := ""

	for _, part := range parts {
		if line == "" {
			line = part
			continue
		}
		candidate := line + ", " + part
		if len(lineIndent)+len(candidate)+1 > LineLength {
			lines = append(lines, line+",")
			line = part
			continue
		}
		line = candidate
	}

	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func formatSeconds(s float64) string {
	return durationPrinter.Sprint(number.Decimal(s, number.MaxFractionDigits(3)))
}
