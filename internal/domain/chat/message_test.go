package chat

import (
	"encoding/json"
	"testing"
)

func decodeTranscript(t *testing.T, raw string) []IncomingMessage {
	t.Helper()
	var msgs []IncomingMessage
	if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	return msgs
}

func TestExtractLastUserText(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name: "skips blank content and assistant turns",
			raw: `[
				{"role":"assistant","parts":[{"type":"text","text":"hola, ¿en qué te ayudo?"}]},
				{"role":"user","content":"  "},
				{"role":"user","parts":[{"type":"text","text":"real question"}]}
			]`,
			want:   "real question",
			wantOK: true,
		},
		{
			name:   "most recent non-blank user turn wins",
			raw:    `[{"role":"user","content":"first"},{"role":"user","content":"second"},{"role":"assistant","content":"x"}]`,
			want:   "second",
			wantOK: true,
		},
		{
			name:   "falls back to older user turn when newest is blank",
			raw:    `[{"role":"user","content":"older"},{"role":"user","parts":[{"type":"text","text":" "}]}]`,
			want:   "older",
			wantOK: true,
		},
		{
			name:   "parts take precedence over content",
			raw:    `[{"role":"user","parts":[{"type":"text","text":"from parts"}],"content":"from content"}]`,
			want:   "from parts",
			wantOK: true,
		},
		{
			name:   "blank parts fall back to content",
			raw:    `[{"role":"user","parts":[{"type":"reasoning","text":"hidden"}],"content":"from content"}]`,
			want:   "from content",
			wantOK: true,
		},
		{
			name:   "joins text parts without separator",
			raw:    `[{"role":"user","parts":[{"type":"text","text":"ho"},null,{"type":"file"},{"type":"text","text":"la"}]}]`,
			want:   "hola",
			wantOK: true,
		},
		{
			name:   "non-string content ignored",
			raw:    `[{"role":"user","content":42},null]`,
			wantOK: false,
		},
		{
			name:   "empty transcript",
			raw:    `[]`,
			wantOK: false,
		},
		{
			name:   "only assistant",
			raw:    `[{"role":"assistant","content":"hola"}]`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLastUserText(decodeTranscript(t, tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("ExtractLastUserText() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ExtractLastUserText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if ParseRole("user") != RoleUser {
		t.Error("ParseRole(user) mismatch")
	}
	if ParseRole("") != RoleAssistant {
		t.Error("ParseRole(empty) should default to assistant")
	}
}
