package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestDeepSeekProvider(t *testing.T, key string, handler http.HandlerFunc) *DeepSeekProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewDeepSeekProvider(DeepSeekConfig{
		APIKey:  key,
		BaseURL: server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("NewDeepSeekProvider: %v", err)
	}
	return p
}

func writeCompletion(w http.ResponseWriter, content any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":    "chatcmpl-test",
		"model": "deepseek-chat",
		"choices": []map[string]any{
			{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     120,
			"completion_tokens": 300,
			"total_tokens":      420,
		},
	})
}

func TestDeepSeekProvider_HappyPath(t *testing.T) {
	var got map[string]any
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeCompletion(w, `{"article":"A {{1}}.","options":{"1":["a","b","c","d"]}}`)
	})

	req := UserPrompt("make a cloze")
	req.Temperature = 0.7
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(resp.Text, `{"article"`) {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 300 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.Model != "deepseek-chat" {
		t.Fatalf("expected model deepseek-chat, got %q", resp.Model)
	}
	if got["model"] != "deepseek-chat" {
		t.Fatalf("expected request model deepseek-chat, got %v", got["model"])
	}
	if got["temperature"] != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", got["temperature"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected a single message, got %d", len(msgs))
	}
	if _, ok := got["response_format"]; ok {
		t.Fatal("response_format should be omitted without JSON mode")
	}
}

func TestDeepSeekProvider_JSONMode(t *testing.T) {
	var got map[string]any
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		writeCompletion(w, "{}")
	})

	req := UserPrompt("x")
	req.JSONMode = true
	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", got["response_format"])
	}
}

func TestDeepSeekProvider_MaxTokens(t *testing.T) {
	var got map[string]any
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		writeCompletion(w, "{}")
	})

	if _, err := p.Generate(context.Background(), UserPrompt("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := got["max_tokens"]; ok {
		t.Fatal("max_tokens should be omitted when unset")
	}

	req := UserPrompt("x")
	req.MaxTokens = 1500
	if _, err := p.Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["max_tokens"] != float64(1500) {
		t.Fatalf("expected max_tokens 1500, got %v", got["max_tokens"])
	}
	if _, ok := got["max_completion_tokens"]; ok {
		t.Fatal("deepseek takes max_tokens, not max_completion_tokens")
	}
}

func TestNewDeepSeekProvider_BlankKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		_, err := NewDeepSeekProvider(DeepSeekConfig{APIKey: key})
		var cfgErr *ErrConfiguration
		if !errors.As(err, &cfgErr) {
			t.Fatalf("key %q: expected ErrConfiguration, got %T (%v)", key, err, err)
		}
		if cfgErr.Setting != "DEEPSEEK_API_KEY" {
			t.Fatalf("expected setting DEEPSEEK_API_KEY, got %q", cfgErr.Setting)
		}
	}
}

func TestNewDeepSeekProvider_Defaults(t *testing.T) {
	p, err := NewDeepSeekProvider(DeepSeekConfig{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "deepseek-chat" {
		t.Fatalf("expected deepseek-chat, got %q", p.ModelID())
	}
}

func TestDeepSeekProvider_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{
			name:        "json error message",
			status:      http.StatusUnauthorized,
			body:        `{"error":{"message":"Authentication Fails (no such user)","type":"authentication_error"}}`,
			wantMessage: "Authentication Fails (no such user)",
		},
		{
			name:        "json without message",
			status:      http.StatusBadRequest,
			body:        `{"detail":"bad"}`,
			wantMessage: `{"detail":"bad"}`,
		},
		{
			name:        "plain text body",
			status:      http.StatusBadGateway,
			body:        "upstream connect error",
			wantMessage: "API error: 502 - upstream connect error",
		},
		{
			name:        "empty body",
			status:      http.StatusServiceUnavailable,
			body:        "",
			wantMessage: "API error: 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := p.Generate(context.Background(), UserPrompt("x"))
			var up *ErrUpstream
			if !errors.As(err, &up) {
				t.Fatalf("expected ErrUpstream, got %T (%v)", err, err)
			}
			if up.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, up.StatusCode)
			}
			if up.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, up.Message)
			}
		})
	}
}

func TestDeepSeekProvider_LongErrorBodyIsTruncated(t *testing.T) {
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 1000)))
	})
	_, err := p.Generate(context.Background(), UserPrompt("x"))
	var up *ErrUpstream
	if !errors.As(err, &up) {
		t.Fatalf("expected ErrUpstream, got %T", err)
	}
	if n := len([]rune(up.Message)); n > len("API error: 500 - ")+201 {
		t.Fatalf("message not truncated: %d runes", n)
	}
	if !up.Transient() {
		t.Fatal("5xx should be transient")
	}
}

func TestDeepSeekProvider_NoChoices(t *testing.T) {
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})
	_, err := p.Generate(context.Background(), UserPrompt("x"))
	var empty *ErrEmptyResponse
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyResponse, got %T (%v)", err, err)
	}
}

func TestDeepSeekProvider_NullContent(t *testing.T) {
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, nil)
	})
	_, err := p.Generate(context.Background(), UserPrompt("x"))
	var empty *ErrEmptyResponse
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyResponse, got %T (%v)", err, err)
	}
}

func TestDeepSeekProvider_ContextCancelsRequest(t *testing.T) {
	released := make(chan struct{})
	p := newTestDeepSeekProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		close(released)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, UserPrompt("x"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("server never observed the cancelled request")
	}
}
