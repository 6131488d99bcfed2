// Package handler contains HTTP request handlers for the easing playground.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, we use http.HandlerFunc, a function with the right signature
// that automatically satisfies the Handler interface. Chi's router accepts these directly.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (headers, body)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, body)
//
// Handlers should NOT contain business logic: they are the "glue" between HTTP and the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/easing-playground/internal/apperror"
	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/service"
)

// maxBodyBytes caps request bodies. Scripts are limited further by the service.
const maxBodyBytes = 1 << 20

// CurveProcessor is the part of service.EasingService the handlers need.
// Tests can pass a stub instead of a full service.
type CurveProcessor interface {
	Process(ctx context.Context, in service.ProcessInput) (*service.ProcessOutput, error)
}

// Defaults fill in optional request fields.
type Defaults struct {
	Tolerance float64
	Precision int
}

// ProcessRequest is the JSON body of POST /api/process and POST /api/preview.
//
// POINTER FIELDS:
// tolerance and precision are pointers so we can tell "absent" (nil → use the
// default) from an explicit zero, which is a valid value for both.
type ProcessRequest struct {
	Action        model.Action `json:"action"`
	Script        string       `json:"script"`
	Tolerance     *float64     `json:"tolerance,omitempty"`
	Precision     *int         `json:"precision,omitempty"`
	Name          string       `json:"name,omitempty"`
	IdealDuration *float64     `json:"idealDuration,omitempty"`
}

// ProcessResponse is the JSON body of a successful POST /api/process.
type ProcessResponse struct {
	Name     string           `json:"name"`
	Duration float64          `json:"duration"`
	Points   model.LinearData `json:"points"`
	Parts    []string         `json:"parts"`
	Code     string           `json:"code"`
	Cached   bool             `json:"cached"`
	// Dense is the full sampled curve, only sent when ?dense=true.
	Dense model.LinearData `json:"dense,omitempty"`
}

// ProcessHandler turns scripts and SVG paths into CSS over HTTP.
type ProcessHandler struct {
	proc     CurveProcessor
	defaults Defaults
	logger   *slog.Logger
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(proc CurveProcessor, defaults Defaults, logger *slog.Logger) *ProcessHandler {
	return &ProcessHandler{
		proc:     proc,
		defaults: defaults,
		logger:   logger,
	}
}

// HandleProcess runs one script or SVG path through the sandbox and the pipeline.
//
// HTTP: POST /api/process
// REQUEST BODY:  {"action":"process-script","script":"function ease(x){return x*x}","tolerance":0.0005,"precision":4}
// RESPONSE BODY: {"name":"ease","duration":0,"points":[[0,0],...],"parts":["0","1"],"code":":root {...}","cached":false}
//
// ORIGIN GATE:
// Only requests whose Origin header is exactly "null" are served. Anything
// else gets 204 No Content with an empty body and nothing is executed.
func (h *ProcessHandler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	out, ok := h.process(w, r)
	if !ok {
		return
	}

	resp := ProcessResponse{
		Name:     out.Dense.Name,
		Duration: out.Dense.Duration,
		Points:   out.Output.Points,
		Parts:    out.Output.Parts,
		Code:     out.Output.Code,
		Cached:   out.Cached,
	}
	if r.URL.Query().Get("dense") == "true" {
		resp.Dense = out.Dense.Points
	}
	writeJSON(w, http.StatusOK, resp)
}

// process is shared by every handler that runs the pipeline. It reports
// false when a response has already been written.
func (h *ProcessHandler) process(w http.ResponseWriter, r *http.Request) (*service.ProcessOutput, bool) {
	if r.Header.Get("Origin") != model.SentinelOrigin {
		h.logger.Debug("request from foreign origin ignored",
			slog.String("origin", r.Header.Get("Origin")),
		)
		w.WriteHeader(http.StatusNoContent)
		return nil, false
	}
	w.Header().Set("Access-Control-Allow-Origin", model.SentinelOrigin)

	// JSON DECODING:
	// http.MaxBytesReader stops a client from streaming an unbounded body,
	// and DisallowUnknownFields turns a typo like "tolerence" into a 400
	// instead of a silently ignored field.
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req ProcessRequest
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("invalid process request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON body"))
		return nil, false
	}

	in := service.ProcessInput{
		Action:        req.Action,
		Script:        req.Script,
		Tolerance:     h.defaults.Tolerance,
		Precision:     h.defaults.Precision,
		Name:          req.Name,
		IdealDuration: req.IdealDuration,
	}
	if req.Tolerance != nil {
		in.Tolerance = *req.Tolerance
	}
	if req.Precision != nil {
		in.Precision = *req.Precision
	}

	out, err := h.proc.Process(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return out, true
}
