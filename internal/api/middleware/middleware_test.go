package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/welth-app/welth/internal/auth"
	"github.com/welth-app/welth/internal/pkg/logger"
)

const testSecret = "test-secret"

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, ok := GetUserID(r)
	if !ok {
		w.Write([]byte("anonymous"))
		return
	}
	w.Write([]byte(id))
}

func accessToken(t *testing.T) string {
	t.Helper()
	pair, err := auth.MintTokens("u-1", "ana", testSecret, time.Minute, time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	h := AuthMiddleware(testSecret)(http.HandlerFunc(echoUser))

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), MsgUnauthenticated)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken(t))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u-1", rec.Body.String())
	})

	t.Run("cookie token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: accessToken(t)})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "u-1", rec.Body.String())
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		pair, err := auth.MintTokens("u-1", "ana", testSecret, time.Minute, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalAuthMiddleware(t *testing.T) {
	h := OptionalAuthMiddleware(testSecret)(http.HandlerFunc(echoUser))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "u-1", rec.Body.String())
}

func TestLogger_RecordsUserAndFlushes(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Format: "json", Output: &buf})

	h := Logger(log)(AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := w.(http.Flusher)
		assert.True(t, ok, "wrapped writer must support flushing")
		w.WriteHeader(http.StatusAccepted)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken(t))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"user_id":"u-1"`)
	assert.Contains(t, buf.String(), `"status":202`)
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestID(t *testing.T) {
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetRequestID(r)))
	}))

	tests := []struct {
		name    string
		inbound string
		keep    bool
	}{
		{name: "frontend id kept", inbound: "req-42", keep: true},
		{name: "uuid kept", inbound: "5f0c8a52-1d1e-4c43-9b7e-0a4f2b7e9c10", keep: true},
		{name: "missing", inbound: ""},
		{name: "header injection", inbound: "req-42\r\nX-Admin: 1"},
		{name: "spaces", inbound: "req 42"},
		{name: "too long", inbound: strings.Repeat("a", 65)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header[RequestIDHeader] = []string{tt.inbound}
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			assert.Equal(t, got, rec.Body.String(), "context and header agree")
			if tt.keep {
				assert.Equal(t, tt.inbound, got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err, "replaced with a fresh uuid")
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name      string
		path      string
		forwarded string
		wantCSP   bool
		wantStore bool
		wantHSTS  bool
	}{
		{name: "api over plain http", path: "/api/me", wantCSP: true, wantStore: true},
		{name: "api behind tls proxy", path: "/api/me", forwarded: "https", wantCSP: true, wantStore: true, wantHSTS: true},
		{name: "health", path: "/healthz", wantCSP: true},
		{name: "swagger ui", path: "/swagger/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
			assert.Equal(t, tt.wantCSP, rec.Header().Get("Content-Security-Policy") != "")
			assert.Equal(t, tt.wantStore, rec.Header().Get("Cache-Control") == "no-store")
			assert.Equal(t, tt.wantHSTS, rec.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestFrontendCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		name     string
		frontend string
		origin   string
		allowed  bool
	}{
		{name: "configured origin", frontend: "https://welth.app/", origin: "https://welth.app", allowed: true},
		{name: "dev server not allowed in production", frontend: "https://welth.app", origin: "http://localhost:3000"},
		{name: "local frontend adds dev servers", frontend: "http://localhost:5173", origin: "http://127.0.0.1:3000", allowed: true},
		{name: "unknown origin", frontend: "https://welth.app", origin: "https://evil.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			FrontendCORS(tt.frontend)(ok).ServeHTTP(rec, req)

			if !tt.allowed {
				assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
				return
			}
			assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.Header.Set("Origin", "https://welth.app")
	rec := httptest.NewRecorder()
	FrontendCORS("https://welth.app")(ok).ServeHTTP(rec, req)
	exposed := strings.ToLower(rec.Header().Get("Access-Control-Expose-Headers"))
	assert.Contains(t, exposed, strings.ToLower(UIMessageStreamHeader))
	assert.Contains(t, exposed, strings.ToLower(RequestIDHeader))
}
