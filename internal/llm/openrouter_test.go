package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "deepseek/deepseek-chat",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "deepseek/deepseek-chat" {
			t.Errorf("model = %q, want %q", p.ModelID(), "deepseek/deepseek-chat")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{Model: "deepseek/deepseek-chat"})
		var cfgErr *ErrConfiguration
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ErrConfiguration, got %T (%v)", err, err)
		}
		if cfgErr.Setting != "OPENROUTER_API_KEY" {
			t.Errorf("setting = %q, want OPENROUTER_API_KEY", cfgErr.Setting)
		}
	})

	t.Run("custom model pass-through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "gpt-4o",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "gpt-4o" {
			t.Errorf("model = %q, want %q", p.ModelID(), "gpt-4o")
		}
	})
}

func TestOpenRouterProvider_CustomBaseURL(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeCompletion(w, "{}")
	}))
	defer server.Close()

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "deepseek/deepseek-chat",
		BaseURL: server.URL + "/api/v1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(context.Background(), UserPrompt("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/api/v1/chat/completions" {
		t.Errorf("path = %q, want /api/v1/chat/completions", path)
	}
}
