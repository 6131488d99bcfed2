package server_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/easing-playground/internal/handler"
	"github.com/sakif/easing-playground/internal/model"
	"github.com/sakif/easing-playground/internal/pipeline"
	"github.com/sakif/easing-playground/internal/server"
	"github.com/sakif/easing-playground/internal/service"
)

// stubProcessor answers every request with the same linear curve.
type stubProcessor struct{}

func (stubProcessor) Process(_ context.Context, in service.ProcessInput) (*service.ProcessOutput, error) {
	dense := &model.ProcessResult{
		Name:   "linear",
		Points: model.LinearData{{Pos: 0, Val: 0}, {Pos: 1, Val: 1}},
	}
	return &service.ProcessOutput{
		Dense:  dense,
		Output: pipeline.Run(dense.Points, pipeline.Options{Tolerance: in.Tolerance, Precision: in.Precision, Name: dense.Name}),
	}, nil
}

func newTestServer() *server.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return server.New(server.Config{Defaults: handler.Defaults{Tolerance: 0.001, Precision: 3}}, stubProcessor{}, logger)
}

func TestRoutes(t *testing.T) {
	ts := httptest.NewServer(newTestServer().Handler())
	defer ts.Close()

	body := `{"action":"process-script","script":"function linear(x) { return x }"}`

	tests := []struct {
		name        string
		method      string
		path        string
		origin      string
		status      int
		contentType string
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK, "application/json"},
		{"process", http.MethodPost, "/api/process", "null", http.StatusOK, "application/json"},
		{"process foreign origin", http.MethodPost, "/api/process", "https://evil.example", http.StatusNoContent, ""},
		{"preview", http.MethodPost, "/api/preview", "null", http.StatusOK, "image/svg+xml"},
		{"wrong method", http.MethodGet, "/api/process", "null", http.StatusMethodNotAllowed, ""},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, bytes.NewBufferString(body))
			require.NoError(t, err)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contentType != "" {
				assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			}
		})
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newTestServer().Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}
