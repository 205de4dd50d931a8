package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/welth-app/welth/internal/api/dto"
	"github.com/welth-app/welth/internal/api/handlers"
	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/pkg/logger"
	"github.com/welth-app/welth/internal/pkg/validator"
	"github.com/welth-app/welth/internal/services"
	"github.com/welth-app/welth/internal/testutil"
)

type stack struct {
	server *httptest.Server
	subs   *testutil.MockSubscriptionRepository
}

func newStack(t *testing.T) *stack {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{FrontendURL: "http://localhost:3000"},
		Auth: config.AuthConfig{
			JWTSecret:          "router-secret",
			AccessTokenExpiry:  time.Minute,
			RefreshTokenExpiry: time.Hour,
		},
	}
	log := logger.Nop()

	users := testutil.NewMockUserRepository()
	subs := testutil.NewMockSubscriptionRepository()
	chats := testutil.NewMockChatRepository()
	plans := testutil.NewMockPlanRepository()
	gen := &testutil.FakeGenerator{Chunks: []string{"Respira ", "profundo."}}

	accounts := services.NewAccountService(subs, plans, log)
	chatService := services.NewChatService(gen, nil, "gemini", chats, services.NewHistoryLoader(chats, plans), accounts, log)

	h := New(cfg, log, &Handlers{
		Health:  handlers.NewHealthHandler(testutil.NewTestDB(t), log),
		Auth:    handlers.NewAuthHandler(services.NewUserService(users, log, bcrypt.MinCost, true), cfg, log, validator.New()),
		Chat:    handlers.NewChatHandler(chatService, log),
		Account: handlers.NewAccountHandler(accounts, log),
		Plan:    handlers.NewPlanHandler(services.NewPlanService(plans, accounts, log), log),
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &stack{server: srv, subs: subs}
}

func (s *stack) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRouter_ChatFlow(t *testing.T) {
	s := newStack(t)

	resp := s.do(t, http.MethodPost, "/api/auth/register", "", `{"username":"Ana Lopez","password":"secreto1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var auth dto.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&auth))

	body := `{"messages":[{"role":"user","content":"¿Cómo duermo mejor?"}]}`

	resp = s.do(t, http.MethodPost, "/api/chat", "", body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/chat", auth.AccessToken, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	s.subs.SetPremium(auth.User.ID)
	resp = s.do(t, http.MethodPost, "/api/chat", auth.AccessToken, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "v1", resp.Header.Get(handlers.UIMessageStreamHeader))

	stream, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(stream), `"delta":"Respira "`)
	assert.True(t, strings.HasSuffix(string(stream), "data: [DONE]\n\n"))

	resp = s.do(t, http.MethodGet, "/api/chat/history", auth.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history dto.HistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&history))
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "Respira profundo.", history.Messages[1].Parts[0].Text)
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	s := newStack(t)

	for _, path := range []string{"/api/me", "/api/plans", "/api/plans/progress", "/api/auth/me"} {
		resp := s.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
