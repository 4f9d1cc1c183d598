package httpserver_test

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpvalidate/pkg/httpserver"
	"github.com/dmitrymomot/httpvalidate/pkg/logger"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func TestServe(t *testing.T) {
	t.Parallel()
	buf := &bytes.Buffer{}
	srv := httpserver.New(
		httpserver.WithShutdownTimeout(time.Second),
		httpserver.WithLogger(logger.New(logger.WithOutput(buf))),
	)
	ln := listen(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		require.Fail(t, "serve did not return after cancel")
	}

	assert.Contains(t, buf.String(), "http server started")
	assert.Contains(t, buf.String(), "http server stopped")
	assert.NoError(t, srv.Shutdown(context.Background()), "repeated shutdown")
}

func TestRunInvalidAddr(t *testing.T) {
	t.Parallel()
	err := httpserver.New(httpserver.WithAddr("256.0.0.1:-1")).Run(context.Background(), nil)
	require.ErrorIs(t, err, httpserver.ErrStart)
}

func TestShutdownBeforeRun(t *testing.T) {
	t.Parallel()
	assert.NoError(t, httpserver.New().Shutdown(context.Background()))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()
	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "256.0.0.1:-1"})
	require.ErrorIs(t, srv.Run(context.Background(), nil), httpserver.ErrStart)
	assert.Panics(t, func() { httpserver.WithAddr("") })
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()
	failing := func(context.Context) error { return errors.New("db down") }
	passing := func(context.Context) error { return nil }

	tests := []struct {
		name       string
		checks     []httpserver.Check
		wantStatus int
		wantBody   string
	}{
		{"liveness", nil, http.StatusOK, `{"status": "alive"}`},
		{"ready", []httpserver.Check{passing, passing}, http.StatusOK, `{"status": "ready"}`},
		{"not ready", []httpserver.Check{passing, failing}, http.StatusServiceUnavailable, `{"status": "not_ready"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			httpserver.HealthHandler(tt.checks...)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
