// Package generation streams assistant replies from a hosted language model.
package generation

import (
	"context"
	"strings"

	"github.com/welth-app/welth/internal/config"
	"github.com/welth-app/welth/internal/domain/chat"
	"github.com/welth-app/welth/internal/pkg/errors"
)

// Message is one prior or current conversation turn sent to the model
type Message struct {
	Role    chat.Role
	Content string
}

// Request is a single generation call
type Request struct {
	System   string
	Messages []Message
}

// Chunk is one increment of streamed text. A chunk with Err set is the last
// value sent before the channel closes.
type Chunk struct {
	Text string
	Err  error
}

// Generator starts a streamed generation. The returned channel is closed when
// the model finishes, fails, or ctx is cancelled. Producers stop as soon as
// ctx is done.
type Generator interface {
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}

// Send delivers c unless ctx is cancelled first
func Send(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

// New builds the generator selected by cfg. It returns a CONFIG_ERROR when the
// selected provider has no credential.
func New(cfg config.GenerationConfig) (Generator, error) {
	if strings.TrimSpace(cfg.APIKey()) == "" {
		return nil, errors.ConfigError(missingCredentialMessage(cfg.Provider))
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.Temperature), nil
	default:
		g, err := NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

func missingCredentialMessage(provider string) string {
	if provider == config.ProviderOpenAI {
		return "Falta OPENAI_API_KEY en el entorno"
	}
	return "Falta GOOGLE_GENERATIVE_AI_API_KEY en el entorno"
}
