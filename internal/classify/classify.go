// Package classify converts a failed execution into the single error reply
// a sandbox instance is allowed to send.
package classify

import (
	"errors"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/stackparse"
)

// Poster is the sending half of a reply channel.
// Post reports false when the channel was already settled.
type Poster interface {
	Post(reply model.Reply) bool
}

// Classify builds the wire error for err.
//
// The top frame of the attached stack text (see apperror.StackOf) fills in
// the location. A frame without a location contributes its function name
// only, and no frame at all leaves just the message.
func Classify(err error) model.PostMessageError {
	out := model.PostMessageError{
		Message: message(err),
		Kind:    apperror.Kind(err),
	}

	frame, ok := stackparse.Top(apperror.StackOf(err))
	if !ok {
		return out
	}

	out.FunctionName = frame.FunctionName
	if frame.HasLocation {
		out.FileName = frame.FileName
		out.LineNumber = frame.LineNumber
		out.ColumnNumber = frame.ColumnNumber
	}
	return out
}

// Fail posts the classified form of err on port and hands err back, so the
// caller can still log it. The remote side only ever sees the posted reply.
func Fail(port Poster, err error) error {
	classified := Classify(err)
	port.Post(model.Reply{Error: &classified})
	return err
}

func message(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
