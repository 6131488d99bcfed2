package model

// Action selects what a sandbox instance does with Request.Script.
type Action string

const (
	ActionProcessScript Action = "process-script"
	ActionProcessSVG    Action = "process-svg"
)

// Valid reports whether a is one of the known actions.
func (a Action) Valid() bool {
	return a == ActionProcessScript || a == ActionProcessSVG
}

// SentinelOrigin is the only origin a sandbox accepts requests from. It is
// what a browser reports for a maximally sandboxed frame.
const SentinelOrigin = "null"

// Request is the message delivered to a sandbox instance.
// For ActionProcessScript, Script is easing-function source; for
// ActionProcessSVG it is SVG path data.
type Request struct {
	Action Action `json:"action"`
	Script string `json:"script"`
}

// ProcessResult is the dense output of one successful execution.
// Duration is a hint in milliseconds and is never negative.
type ProcessResult struct {
	Name     string     `json:"name"`
	Points   LinearData `json:"points"`
	Duration float64    `json:"duration"`
}

// StackDetails is the best-effort location of a failure inside user code.
// FunctionName alone is set when only the frame name could be recovered.
type StackDetails struct {
	FunctionName string `json:"functionName,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	LineNumber   int    `json:"lineNumber,omitempty"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
}

// PostMessageError is the error payload of a Reply. Kind carries the error
// taxonomy ("AlreadyUsed", "NoFunctionFound", ...); the stack fields are
// omitted when nothing could be extracted.
type PostMessageError struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
	StackDetails
}

// Reply is what a sandbox posts back: exactly one of Result or Error is set.
type Reply struct {
	Result *ProcessResult    `json:"result,omitempty"`
	Error  *PostMessageError `json:"error,omitempty"`
}
