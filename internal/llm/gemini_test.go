package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNewGeminiProvider_MissingKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{Model: "gemini-flash"})
	var cfgErr *ErrConfiguration
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ErrConfiguration, got %T (%v)", err, err)
	}
	if cfgErr.Setting != "GEMINI_API_KEY" {
		t.Errorf("setting = %q, want GEMINI_API_KEY", cfgErr.Setting)
	}
}

func geminiServer(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{
		APIKey:  "gm-test",
		Model:   "gemini-flash",
		BaseURL: srv.URL + "/",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestGeminiProvider_Generate(t *testing.T) {
	var body map[string]any
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "gm-test" {
			t.Errorf("unexpected api key header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"article\": \"A {{1}}.\"}"}]}, "finishReason": "MAX_TOKENS"}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 30, "totalTokenCount": 42}
		}`))
	})

	req := UserPrompt("Write a cloze test.")
	req.System = "Reply with JSON."
	req.MaxTokens = 800
	req.JSONMode = true

	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `{"article": "A {{1}}."}` {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.StopReason != "max_tokens" {
		t.Errorf("stop reason = %q, want max_tokens", resp.StopReason)
	}
	if resp.Usage != (Usage{InputTokens: 12, OutputTokens: 30, TotalTokens: 42}) {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}

	cfg, _ := body["generationConfig"].(map[string]any)
	if cfg["responseMimeType"] != "application/json" {
		t.Errorf("expected JSON response type, got %v", cfg["responseMimeType"])
	}
	if cfg["maxOutputTokens"] != float64(800) {
		t.Errorf("expected maxOutputTokens 800, got %v", cfg["maxOutputTokens"])
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Errorf("expected system instruction in request")
	}
}

func TestGeminiProvider_UpstreamError(t *testing.T) {
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	})

	_, err := p.Generate(context.Background(), UserPrompt("hi"))
	var upErr *ErrUpstream
	if !errors.As(err, &upErr) {
		t.Fatalf("expected ErrUpstream, got %T (%v)", err, err)
	}
	if upErr.StatusCode != 429 || upErr.Message != "quota exhausted" {
		t.Errorf("unexpected upstream error %+v", upErr)
	}
}

func TestGeminiProvider_NoCandidates(t *testing.T) {
	p := geminiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	})

	_, err := p.Generate(context.Background(), UserPrompt("hi"))
	var emptyErr *ErrEmptyResponse
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected ErrEmptyResponse, got %T (%v)", err, err)
	}
}

func TestBuildGeminiContents(t *testing.T) {
	got := buildGeminiContents([]Message{
		{Role: RoleUser, Content: "question"},
		{Role: RoleAssistant, Content: "answer"},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "model" {
		t.Errorf("unexpected roles %q, %q", got[0].Role, got[1].Role)
	}
	if got[1].Parts[0].Text != "answer" {
		t.Errorf("unexpected text %q", got[1].Parts[0].Text)
	}
}

func TestMapGeminiError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"value", genai.APIError{Code: 503, Message: "overloaded"}, 503},
		{"pointer", &genai.APIError{Code: 400, Message: "bad request"}, 400},
		{"transport", errors.New("connection reset"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var upErr *ErrUpstream
			if !errors.As(mapGeminiError(tt.err), &upErr) {
				t.Fatalf("expected ErrUpstream")
			}
			if upErr.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", upErr.StatusCode, tt.status)
			}
			if upErr.Err == nil {
				t.Errorf("expected the original error to be kept")
			}
		})
	}
}
