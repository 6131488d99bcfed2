package executor

import (
	"context"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
)

// Executor represents the core interface for running a request in an isolated environment.
// Every call consumes a fresh single-use instance.
type Executor interface {
	Execute(ctx context.Context, req model.Request) (*model.ProcessResult, error)
}

// ReplyError is an error reply surfaced as a Go error. It keeps the wire
// details for callers that forward them, and unwraps to the apperror
// sentinel named by the reply's kind.
type ReplyError struct {
	Details model.PostMessageError
	err     error
}

func (e *ReplyError) Error() string {
	return e.Details.Message
}

func (e *ReplyError) Unwrap() error {
	return e.err
}

// ResultFromReply converts a reply into a result or a *ReplyError.
func ResultFromReply(reply model.Reply) (*model.ProcessResult, error) {
	if reply.Error != nil {
		return nil, &ReplyError{
			Details: *reply.Error,
			err:     apperror.FromKind(reply.Error.Kind, reply.Error.Message),
		}
	}
	if reply.Result == nil {
		return nil, apperror.Execution("empty reply", "")
	}
	return reply.Result, nil
}
