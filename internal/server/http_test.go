package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Yo1k/qaws/internal/config"
	"github.com/Yo1k/qaws/internal/logging"
)

func newTestServer(questionsHandler http.HandlerFunc) *http.Server {
	cfg := &config.App{HTTPAddr: "127.0.0.1:0"}
	return NewHTTPServer(cfg, zerolog.New(io.Discard), nil, nil, questionsHandler)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQuestionsRouteDispatches(t *testing.T) {
	var hits int
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions", nil))

	assert.Equal(t, 1, hits)
}

func TestRequestIDAssigned(t *testing.T) {
	var loggedCtx bool
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		// the request-scoped logger must be reachable downstream
		log := logging.FromContext(r.Context())
		log.Debug().Msg("handled")
		loggedCtx = true
	})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/questions", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.True(t, loggedCtx)
}

func TestRequestIDReused(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodPost, "/v1/questions", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMetricsExposed(t *testing.T) {
	srv := newTestServer(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
