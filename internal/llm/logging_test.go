package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/cloze/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Text: `{"ok":true}`, Usage: Usage{InputTokens: 3, OutputTokens: 4}})
	p := WithLogging(mock, "mock", repo, nil)

	ctx := WithUser(WithPurpose(context.Background(), "cloze-gen"), "u-1")
	if _, err := p.Generate(ctx, UserPrompt("words: apple")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if !ev.Success || ev.Purpose != "cloze-gen" || ev.UserID != "u-1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.InputTokens != 3 || ev.OutputTokens != 4 {
		t.Fatalf("unexpected tokens: %+v", ev)
	}
	if !strings.Contains(ev.RequestBody, "words: apple") {
		t.Fatalf("request body not captured: %q", ev.RequestBody)
	}
	if ev.ResponseBody != `{"ok":true}` {
		t.Fatalf("response body not captured: %q", ev.ResponseBody)
	}
}

func TestLoggingProvider_RecordsFailure(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{Err: &ErrUpstream{StatusCode: 500, Message: "down"}})
	p := WithLogging(mock, "mock", repo, nil)

	_, err := p.Generate(context.Background(), UserPrompt("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 || repo.events[0].Success {
		t.Fatalf("expected one failed event, got %+v", repo.events)
	}
	if !strings.Contains(repo.events[0].ErrorMessage, "down") {
		t.Fatalf("error message not recorded: %q", repo.events[0].ErrorMessage)
	}
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Text: "ok"})
	p := WithLogging(mock, "mock", repo, nil)

	resp, err := p.Generate(context.Background(), UserPrompt("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
}
