package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/cv-optimizer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestCORSPreflights(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodOptions, "/api/assistant", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "2")
	t.Setenv("RATE_LIMIT_BURST", "2")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "60")

	s := newServer(Config{}, &fakeClient{}, nil)
	t.Cleanup(func() { s.rateLimiter.Stop() })

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

// withAuth enables JWT auth on a test server and returns a valid token.
func withAuth(t *testing.T, s *Server) string {
	t.Helper()

	s.jwtService = NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
	s.httpServer.Handler = s.withRateLimit(s.withLogging(s.withCORS(s.routes())))

	token, err := s.jwtService.GenerateToken(uuid.New())
	require.NoError(t, err)
	return token
}

func TestAuth_APIRequiresToken(t *testing.T) {
	s := newTestServer(t, &fakeClient{jsonResponses: []string{`["Go"]`}})
	token := withAuth(t, s)

	// No token: rejected.
	rec := doJSON(t, s, http.MethodPost, "/api/extract-skills", map[string]any{
		"text": "Go services",
		"kind": "cv",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token: accepted.
	req := httptest.NewRequest(http.MethodPost, "/api/extract-skills",
		strings.NewReader(`{"text": "Go services", "kind": "cv"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_HealthStaysOpen(t *testing.T) {
	s := newTestServer(t, &fakeClient{})
	withAuth(t, s)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExtractClientID(t *testing.T) {
	s := newTestServer(t, &fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	assert.Equal(t, "10.1.2.3", s.extractClientID(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", s.extractClientID(req))
}
