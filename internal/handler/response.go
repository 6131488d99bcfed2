package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// WHY HELPERS?
// Without helpers, every handler repeats the same boilerplate:
//   w.Header().Set("Content-Type", "application/json")
//   w.WriteHeader(statusCode)
//   json.NewEncoder(w).Encode(data)
//
// With helpers, handlers are cleaner and more consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape, the same one a
// sandbox posts back when a script fails:
//   {"error": {"message": "No global function found.", "kind": "NoFunctionFound"}}
//
// Script failures also carry where they happened:
//   {"error": {"message": "boom", "kind": "ExecutionFailure",
//              "functionName": "ease", "fileName": "easing.js", "lineNumber": 2, "columnNumber": 9}}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/classify"
	"github.com/sakif/easing-playground/internal/executor"
	"github.com/sakif/easing-playground/internal/model"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error model.PostMessageError `json:"error"`
	// Field names the offending input of a validation error.
	Field string `json:"field,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// You MUST set headers and status code BEFORE writing the body.
// Once you call w.Write() (which Encode does internally), the headers are sent.
// Any header changes after that are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// If encoding fails, the headers are already sent, so we can only log it.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status code.
//
// The service layer never knows about HTTP. It returns errors wrapping the
// apperror sentinels, and this is the one place that decides what each of
// them means to an HTTP client:
//
//	bad input (validation, unparsable path)          → 400
//	instance reuse                                    → 409
//	the script or path ran but gave no usable curve   → 422
//	budget exhausted or request abandoned             → 408
//	anything else                                     → 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrInvalidPath):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrAlreadyUsed):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrNoFunctionFound),
		errors.Is(err, apperror.ErrMultipleFunctionsFound),
		errors.Is(err, apperror.ErrZeroLengthPath),
		errors.Is(err, apperror.ErrExecution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrTimedOut), errors.Is(err, apperror.ErrCancelled):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// errors.As() UNWRAPPING:
// The service wraps executor errors with context ("executing process-script: ...").
// errors.As walks that chain, so we still find:
//   - *executor.ReplyError: the wire error a sandbox posted. We forward its
//     details untouched, stack location included.
//   - *apperror.AppError: a local error. classify.Classify builds the same
//     wire shape from it.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	var replyErr *executor.ReplyError
	if errors.As(err, &replyErr) {
		writeJSON(w, status, ErrorResponse{Error: replyErr.Details})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, status, ErrorResponse{
			Error: classify.Classify(appErr),
			Field: appErr.Field,
		})
		return
	}

	// Unknown error: return a generic 500.
	// NEVER expose internal error details to the client in production!
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: model.PostMessageError{Message: "An internal error occurred"},
	})
}
