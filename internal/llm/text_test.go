package llm

import "testing"

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json {\"a\":1}```  ", `{"a":1}`},
		{"{\"a\":1}\n```", `{"a":1}`},
		{"Sure:\n```json\n{}\n```\nbye", "Sure:\n```json\n{}\n```\nbye"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("short", 10); got != "short" {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := Preview("héllo wörld", 5); got != "héllo…" {
		t.Fatalf("unexpected preview %q", got)
	}
}
