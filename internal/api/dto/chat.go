package dto

import (
	"github.com/welth-app/welth/internal/domain/chat"
)

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Messages []chat.IncomingMessage `json:"messages"`
}

// UIPart is one part of a rendered transcript message
type UIPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// UIMessage is a stored turn in the shape chat clients render
type UIMessage struct {
	ID    string   `json:"id"`
	Role  string   `json:"role"`
	Parts []UIPart `json:"parts"`
}

// HistoryResponse is the body of GET /api/chat/history
type HistoryResponse struct {
	Messages []UIMessage `json:"messages"`
}

// NewHistoryResponse converts stored turns, keeping their order
func NewHistoryResponse(turns []*chat.Turn) HistoryResponse {
	resp := HistoryResponse{Messages: make([]UIMessage, 0, len(turns))}
	for _, t := range turns {
		resp.Messages = append(resp.Messages, UIMessage{
			ID:    t.ID,
			Role:  string(t.Role),
			Parts: []UIPart{{Type: "text", Text: t.Content}},
		})
	}
	return resp
}

// StreamEvent is one event of the UI message stream
type StreamEvent struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId,omitempty"`
	ID        string `json:"id,omitempty"`
	Delta     string `json:"delta,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}
