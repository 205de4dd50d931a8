package generation

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/welth-app/welth/internal/domain/chat"
)

// OpenAI streams replies through the OpenAI chat completions API
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAI creates an OpenAI generator
func NewOpenAI(apiKey, model string, temperature float32) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return NewOpenAIWithConfig(openai.DefaultConfig(apiKey), model, temperature)
}

// NewOpenAIWithConfig creates an OpenAI generator against a custom endpoint
func NewOpenAIWithConfig(cfg openai.ClientConfig, model string, temperature float32) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model, temperature: temperature}
}

// Stream implements Generator
func (o *OpenAI) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	stream, err := o.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    openAIMessages(req),
		Temperature: o.temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start OpenAI stream: %w", err)
	}

	out := make(chan Chunk)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			resp, err := stream.Recv()
			if stderrors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					Send(ctx, out, Chunk{Err: fmt.Errorf("OpenAI stream failed: %w", err)})
				}
				return
			}
			if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
				continue
			}
			if !Send(ctx, out, Chunk{Text: resp.Choices[0].Delta.Content}) {
				return
			}
		}
	}()

	return out, nil
}

func openAIMessages(req Request) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		if m.Content == "" {
			continue
		}
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case chat.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		case chat.RoleSystem:
			role = openai.ChatMessageRoleSystem
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return msgs
}
