package generation

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/welth-app/welth/internal/domain/chat"
)

// Gemini streams replies through the Google GenAI API
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini generator
func NewGemini(ctx context.Context, apiKey, model string, temperature float32) (*Gemini, error) {
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model, temperature: temperature}, nil
}

// Stream implements Generator
func (g *Gemini) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	contents := geminiContents(req.Messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("generation request has no messages")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
			if err != nil {
				if ctx.Err() == nil {
					Send(ctx, out, Chunk{Err: fmt.Errorf("GenAI stream failed: %w", err)})
				}
				return
			}
			text := resp.Text()
			if text == "" {
				continue
			}
			if !Send(ctx, out, Chunk{Text: text}) {
				return
			}
		}
	}()

	return out, nil
}

func geminiContents(msgs []Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		role := genai.Role(genai.RoleUser)
		if m.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents
}
