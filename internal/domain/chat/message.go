package chat

import (
	"encoding/json"
	"strings"
)

// MessageBody is one content shape of an incoming message.
type MessageBody interface {
	// Text flattens the body to plain text
	Text() string
}

// TextSegment is one typed element of a structured message
type TextSegment struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Parts is the structured shape: a list of typed segments. Only segments of
// type "text" contribute to the flattened text.
type Parts []TextSegment

// Text joins the text segments without separators
func (p Parts) Text() string {
	var b strings.Builder
	for _, seg := range p {
		if seg.Type == "text" {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// PlainContent is the flat string shape
type PlainContent string

// Text returns the content unchanged
func (c PlainContent) Text() string { return string(c) }

// IncomingMessage is a transcript entry posted by a client.
type IncomingMessage struct {
	Role Role
	// Bodies holds the decoded shapes in precedence order: Parts before
	// PlainContent.
	Bodies []MessageBody
}

// NewTextMessage builds a message with a single text segment
func NewTextMessage(role Role, text string) IncomingMessage {
	return IncomingMessage{Role: role, Bodies: []MessageBody{Parts{{Type: "text", Text: text}}}}
}

type rawMessage struct {
	Role    string            `json:"role"`
	Parts   []json.RawMessage `json:"parts"`
	Content json.RawMessage   `json:"content"`
}

type rawSegment struct {
	Type string          `json:"type"`
	Text json.RawMessage `json:"text"`
}

// UnmarshalJSON decodes either shape. Malformed segments and non-string
// content are dropped instead of failing the whole transcript.
func (m *IncomingMessage) UnmarshalJSON(data []byte) error {
	*m = IncomingMessage{}
	if string(data) == "null" {
		return nil
	}

	var raw rawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	m.Role = Role(raw.Role)

	if raw.Parts != nil {
		parts := make(Parts, 0, len(raw.Parts))
		for _, p := range raw.Parts {
			var seg rawSegment
			if err := json.Unmarshal(p, &seg); err != nil || seg.Type == "" {
				continue
			}
			parts = append(parts, TextSegment{Type: seg.Type, Text: segmentText(seg.Text)})
		}
		m.Bodies = append(m.Bodies, parts)
	}

	var content string
	if len(raw.Content) > 0 && json.Unmarshal(raw.Content, &content) == nil {
		m.Bodies = append(m.Bodies, PlainContent(content))
	}
	return nil
}

// MarshalJSON writes the structured shape used by UI clients
func (m IncomingMessage) MarshalJSON() ([]byte, error) {
	out := struct {
		Role    Role          `json:"role"`
		Parts   []TextSegment `json:"parts,omitempty"`
		Content string        `json:"content,omitempty"`
	}{Role: m.Role}
	for _, b := range m.Bodies {
		switch body := b.(type) {
		case Parts:
			out.Parts = append(out.Parts, body...)
		case PlainContent:
			out.Content = string(body)
		}
	}
	return json.Marshal(out)
}

// segmentText renders a segment's text field: strings as-is, null or missing
// as empty, anything else as its JSON literal.
func segmentText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// ExtractLastUserText returns the text of the most recent user message whose
// text is not blank, scanning newest to oldest. Within a message, structured
// parts win over flat content.
func ExtractLastUserText(messages []IncomingMessage) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != RoleUser {
			continue
		}
		for _, body := range m.Bodies {
			if text := body.Text(); strings.TrimSpace(text) != "" {
				return text, true
			}
		}
	}
	return "", false
}
