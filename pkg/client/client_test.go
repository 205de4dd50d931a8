package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginSetsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "ana", body["username"])
			json.NewEncoder(w).Encode(AuthResponse{AccessToken: "tok", User: &User{ID: "u-1", Username: "ana"}})
		case "/api/me":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(Entitlement{Tier: "free", FreeLimit: 10, FreeRemaining: 10})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	resp, err := c.Login(context.Background(), "ana", "secreto1")
	require.NoError(t, err)
	assert.Equal(t, "tok", c.GetToken())
	assert.Equal(t, "u-1", resp.User.ID)

	ent, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, ent.FreeRemaining)
}

func TestClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":"Premium requerido para usar el chat.","code":"PREMIUM_REQUIRED"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	_, err := c.Chat().Send(context.Background(), []Message{UserMessage("hola")}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsPremiumRequired())
	assert.Equal(t, "Premium requerido para usar el chat.", apiErr.Message)
}

func TestChatService_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "hola", req.Messages[0].Text())
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range []string{
			`{"type":"start","messageId":"m1"}`,
			`{"type":"text-start","id":"t1"}`,
			`{"type":"text-delta","id":"t1","delta":"Hola"}`,
			`{"type":"text-delta","id":"t1","delta":", Ana"}`,
			`{"type":"text-end","id":"t1"}`,
			`{"type":"finish"}`,
			`[DONE]`,
		} {
			io.WriteString(w, "data: "+frame+"\n\n")
		}
	}))
	defer srv.Close()

	var deltas []string
	c := NewClient(Config{BaseURL: srv.URL})
	text, err := c.Chat().Send(context.Background(), []Message{UserMessage("hola")}, func(d string) {
		deltas = append(deltas, d)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola, Ana", text)
	assert.Equal(t, []string{"Hola", ", Ana"}, deltas)
}

func TestReadStream(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantErr  string
	}{
		{
			name:     "error event",
			body:     "data: {\"type\":\"text-delta\",\"delta\":\"Ho\"}\n\ndata: {\"type\":\"error\",\"errorText\":\"text generation failed\"}\n\ndata: [DONE]\n\n",
			wantText: "Ho",
			wantErr:  "text generation failed",
		},
		{
			name:     "truncated",
			body:     "data: {\"type\":\"text-delta\",\"delta\":\"Ho\"}\n\n",
			wantText: "Ho",
			wantErr:  io.ErrUnexpectedEOF.Error(),
		},
		{
			name:     "ignores comments",
			body:     ": keep-alive\n\ndata: {\"type\":\"text-delta\",\"delta\":\"ok\"}\n\ndata: [DONE]\n\n",
			wantText: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ReadStream(strings.NewReader(tt.body), nil)
			assert.Equal(t, tt.wantText, text)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestChatService_History(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"messages":[{"id":"1","role":"user","parts":[{"type":"text","text":"hola"}]}]}`)
	}))
	defer srv.Close()

	msgs, err := NewClient(Config{BaseURL: srv.URL}).Chat().History(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hola", msgs[0].Text())
}

func TestClient_Probes(t *testing.T) {
	var notReady atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/healthz":
			io.WriteString(w, `{"status":"ok"}`)
		case "/readyz":
			if notReady.Load() {
				w.WriteHeader(http.StatusServiceUnavailable)
				io.WriteString(w, `{"error":"Database connection failed","code":"SERVICE_UNAVAILABLE"}`)
				return
			}
			io.WriteString(w, `{"status":"ready","database":"connected"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	status, err := c.Ready(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "connected", status.Database)

	notReady.Store(true)
	_, err = c.Ready(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
