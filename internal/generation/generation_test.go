package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/domain/chat"
	"github.com/welth-app/welth/internal/pkg/errors"
)

func TestNew_MissingCredential(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.GenerationConfig
		wantText string
	}{
		{name: "gemini", cfg: config.GenerationConfig{Provider: config.ProviderGemini}, wantText: "GOOGLE_GENERATIVE_AI_API_KEY"},
		{name: "openai", cfg: config.GenerationConfig{Provider: config.ProviderOpenAI, GeminiAPIKey: "unused"}, wantText: "OPENAI_API_KEY"},
		{name: "blank", cfg: config.GenerationConfig{Provider: config.ProviderGemini, GeminiAPIKey: "   "}, wantText: "GOOGLE_GENERATIVE_AI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Equal(t, errors.ErrCodeConfig, errors.Code(err))
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestNew_OpenAI(t *testing.T) {
	g, err := New(config.GenerationConfig{Provider: config.ProviderOpenAI, OpenAIAPIKey: "sk-test"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, g)
}

func TestGeminiContents_MapsRoles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: chat.RoleUser, Content: "hola"},
		{Role: chat.RoleAssistant, Content: "¿en qué te ayudo?"},
		{Role: chat.RoleSystem, Content: "nota"},
		{Role: chat.RoleUser, Content: ""},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, genai.Role(genai.RoleUser), genai.Role(contents[0].Role))
	assert.Equal(t, genai.Role(genai.RoleModel), genai.Role(contents[1].Role))
	assert.Equal(t, genai.Role(genai.RoleUser), genai.Role(contents[2].Role))
}

func TestOpenAIMessages_PrependsSystem(t *testing.T) {
	msgs := openAIMessages(Request{
		System: "persona",
		Messages: []Message{
			{Role: chat.RoleUser, Content: "hola"},
			{Role: chat.RoleAssistant, Content: "hey"},
		},
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, "persona", msgs[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)
}

func sseServer(t *testing.T, deltas []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req openai.ChatCompletionRequest
		if err := json.Unmarshal(body, &req); err != nil || !req.Stream {
			http.Error(w, "expected streaming request", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			chunk := openai.ChatCompletionStreamResponse{
				ID:     "chatcmpl-1",
				Object: "chat.completion.chunk",
				Choices: []openai.ChatCompletionStreamChoice{{
					Index: 0,
					Delta: openai.ChatCompletionStreamChoiceDelta{Content: d},
				}},
			}
			b, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAI_Stream(t *testing.T) {
	srv := sseServer(t, []string{"Hola", "", ", ", "Ana"})
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	g := NewOpenAIWithConfig(cfg, "", 0.7)

	ch, err := g.Stream(context.Background(), Request{
		System:   "persona",
		Messages: []Message{{Role: chat.RoleUser, Content: "hola"}},
	})
	require.NoError(t, err)

	var sb strings.Builder
	for c := range ch {
		require.NoError(t, c.Err)
		sb.WriteString(c.Text)
	}
	assert.Equal(t, "Hola, Ana", sb.String())
}

func TestOpenAI_StreamStartFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-bad")
	cfg.BaseURL = srv.URL + "/v1"

	_, err := NewOpenAIWithConfig(cfg, "gpt-4o-mini", 0).Stream(context.Background(), Request{
		Messages: []Message{{Role: chat.RoleUser, Content: "hola"}},
	})
	assert.Error(t, err)
}

func TestSend_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := make(chan Chunk)
	assert.False(t, Send(ctx, out, Chunk{Text: "x"}))
}
