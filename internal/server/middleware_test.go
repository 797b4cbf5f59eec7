package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canoeh/nocs/internal/config"
	"github.com/canoeh/nocs/internal/models"
)

func TestRequestID(t *testing.T) {
	s := newTestServer(t, newCatalog(t), nil)

	rec := do(t, s, http.MethodGet, "/health", nil)
	generated := rec.Header().Get(requestIDHeader)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)

	id := uuid.New().String()
	rec = do(t, s, http.MethodGet, "/health", http.Header{requestIDHeader: {id}})
	assert.Equal(t, id, rec.Header().Get(requestIDHeader))

	rec = do(t, s, http.MethodGet, "/health", http.Header{requestIDHeader: {"not-a-uuid"}})
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, newCatalog(t), func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0.001
		cfg.RateLimit.Burst = 1
	})

	rec := do(t, s, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(t, s, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", body.Code)
	assert.True(t, body.Retryable)

	// probes are not rate limited
	rec = do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	s := newTestServer(t, newCatalog(t), func(cfg *config.Config) {
		cfg.RateLimit.RequestsPerSecond = 0
		cfg.RateLimit.Burst = 0
	})
	for range 5 {
		rec := do(t, s, http.MethodGet, "/info", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestPanicRecovery(t *testing.T) {
	stub := &stubCatalog{query: func(context.Context, models.ListQuery) (models.Page, error) {
		panic("boom")
	}}
	s := newTestServer(t, stub, nil)
	rec := do(t, s, http.MethodGet, "/occupations", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "INTERNAL", body.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, newCatalog(t), nil)

	rec := do(t, s, http.MethodOptions, "/occupations", http.Header{"Origin": {"https://app.example"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")

	rec = do(t, s, http.MethodGet, "/info", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "ETag")
}

func TestCORS_AllowList(t *testing.T) {
	s := newTestServer(t, newCatalog(t), func(cfg *config.Config) {
		cfg.Server.CORSOrigins = []string{"https://app.example"}
	})

	rec := do(t, s, http.MethodGet, "/info", http.Header{"Origin": {"https://app.example"}})
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")

	rec = do(t, s, http.MethodGet, "/info", http.Header{"Origin": {"https://evil.example"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, newCatalog(t), nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/occupations/21234", nil).Code)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, "nocs_http_requests_total")
	assert.True(t, strings.Contains(text, `path="/occupations/{code}"`), "route pattern label missing")
	assert.Contains(t, text, "nocs_catalog_loads_total")
}

func TestCompression(t *testing.T) {
	s := newTestServer(t, newCatalog(t), nil)
	rec := do(t, s, http.MethodGet, "/occupations?limit=100", http.Header{"Accept-Encoding": {"gzip"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestResponseWriter(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK)
	assert.Equal(t, http.StatusTeapot, rw.Status())
}
