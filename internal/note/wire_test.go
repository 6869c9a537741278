package note

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
	}{
		{"simple", "Shopping", "milk, eggs"},
		{"empty title", "", "just a body"},
		{"empty body", "just a title", ""},
		{"multiline body", "Notes", "line one\nline two\n\nline four"},
		{"unicode", "café ☕", "多行\n文本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := Encode(&Note{Title: tt.title, Body: tt.body})

			title, body := Decode(payload)
			if title != tt.title {
				t.Errorf("title = %q, want %q", title, tt.title)
			}
			if body != tt.body {
				t.Errorf("body = %q, want %q", body, tt.body)
			}
		})
	}
}

func TestEncodeStartsWithHeader(t *testing.T) {
	payload := Encode(&Note{Title: "a", Body: "b"})
	if !strings.HasPrefix(payload, Header+"\n") {
		t.Errorf("payload does not start with header: %q", payload)
	}
}

// Payloads written by other tools carry no header and decode as raw
// body text with an empty title.
func TestDecodeLegacyPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"plain text", "a comment left by some other tool"},
		{"multiline", "first line\nsecond line"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := Decode(tt.payload)
			if title != "" {
				t.Errorf("title = %q, want empty", title)
			}
			if body != tt.payload {
				t.Errorf("body = %q, want %q", body, tt.payload)
			}
		})
	}
}

func TestDecodeBrokenFraming(t *testing.T) {
	// Header present but delimiters missing: salvage content as body.
	payload := Header + "\nsome text without delimiters"
	title, body := Decode(payload)
	if title != "" {
		t.Errorf("title = %q, want empty", title)
	}
	if body != "some text without delimiters" {
		t.Errorf("body = %q", body)
	}
}
