package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ChatService talks to the assistant
type ChatService struct {
	client *Client
}

// StreamEvent is one event of the UI message stream
type StreamEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId,omitempty"`
	ID        string `json:"id,omitempty"`
	Delta     string `json:"delta,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}

type chatRequest struct {
	Messages []Message `json:"messages"`
}

type historyResponse struct {
	Messages []Message `json:"messages"`
}

// Send posts the conversation and streams the reply. onDelta, when non-nil,
// receives each text delta as it arrives. The full reply text is returned
// once the stream ends.
func (s *ChatService) Send(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	req, err := s.client.newRequest(ctx, "POST", "/api/chat", chatRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	// The reply may take longer than the request timeout
	streamClient := *s.client.httpClient
	streamClient.Timeout = 0

	resp, err := streamClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", decodeAPIError(resp.StatusCode, body)
	}

	return ReadStream(resp.Body, onDelta)
}

// ReadStream consumes a UI message stream and returns the concatenated text.
// It fails on an error event or when the stream ends without [DONE].
func ReadStream(r io.Reader, onDelta func(string)) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var text strings.Builder
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			return text.String(), nil
		}

		var ev StreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			return text.String(), fmt.Errorf("failed to parse stream event: %w", err)
		}
		switch ev.Type {
		case "text-delta":
			text.WriteString(ev.Delta)
			if onDelta != nil {
				onDelta(ev.Delta)
			}
		case "error":
			return text.String(), fmt.Errorf("generation failed: %s", ev.ErrorText)
		}
	}
	if err := scanner.Err(); err != nil {
		return text.String(), fmt.Errorf("failed to read stream: %w", err)
	}
	return text.String(), io.ErrUnexpectedEOF
}

// History returns the stored conversation, oldest first
func (s *ChatService) History(ctx context.Context) ([]Message, error) {
	var resp historyResponse
	if err := s.client.doRequest(ctx, "GET", "/api/chat/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}
