// internal/session/registry_test.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/pkg/agent"
)

// fakeClient implements agent.Client for registry tests.
type fakeClient struct {
	sessions    []types.Session
	messages    []types.RawHistoryMessage
	listErr     error
	historyErr  error
	deleted     []types.SessionID
	createdWith agent.CreateSessionRequest
}

func (f *fakeClient) StartAgent(context.Context) error { return nil }
func (f *fakeClient) StopAgent(context.Context) error  { return nil }
func (f *fakeClient) Status(context.Context) (agent.Status, error) {
	return agent.Status{Running: true}, nil
}
func (f *fakeClient) CreateSession(_ context.Context, req agent.CreateSessionRequest) (types.SessionID, error) {
	f.createdWith = req
	return "s-new", nil
}
func (f *fakeClient) SendMessage(context.Context, agent.SendRequest) error { return nil }
func (f *fakeClient) ListSessions(context.Context) ([]types.Session, error) {
	return f.sessions, f.listErr
}
func (f *fakeClient) SessionMessages(context.Context, types.SessionID) ([]types.RawHistoryMessage, error) {
	return f.messages, f.historyErr
}
func (f *fakeClient) DeleteSession(_ context.Context, id types.SessionID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestCreatePassesOptions(t *testing.T) {
	client := &fakeClient{}
	reg := NewRegistry(client)

	id, err := reg.Create(context.Background(), CreateOptions{
		Provider:     "anthropic",
		Model:        "claude-sonnet",
		SystemPrompt: "be brief",
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != "s-new" {
		t.Errorf("expected id s-new, got %s", id)
	}
	if client.createdWith.Provider != "anthropic" || client.createdWith.SystemPrompt != "be brief" {
		t.Errorf("options not forwarded: %+v", client.createdWith)
	}
}

func TestListError(t *testing.T) {
	client := &fakeClient{listErr: errors.New("backend down")}
	reg := NewRegistry(client)

	if _, err := reg.List(context.Background()); err == nil {
		t.Error("expected error from list")
	}
}

func TestHistoryNormalizesPlainText(t *testing.T) {
	client := &fakeClient{messages: []types.RawHistoryMessage{
		{Role: "user", Content: json.RawMessage(`"hello"`), Timestamp: "2026-03-14T09:26:53Z"},
		{Role: "assistant", Content: json.RawMessage(`"hi back"`)},
	}}
	reg := NewRegistry(client)

	history, err := reg.History(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Content != "hello" || history[1].Content != "hi back" {
		t.Errorf("unexpected contents: %q, %q", history[0].Content, history[1].Content)
	}
	if history[0].Timestamp.IsZero() {
		t.Error("expected parsed timestamp")
	}
}

func TestHistoryNormalizesBlocks(t *testing.T) {
	content := `[
		{"type":"text","text":"Let me search. "},
		{"type":"tool_use","id":"T1","name":"search","input":{"q":"go"}},
		{"type":"image","source":"..."},
		{"type":"text","text":"Found it."}
	]`
	client := &fakeClient{messages: []types.RawHistoryMessage{
		{Role: "assistant", Content: json.RawMessage(content)},
	}}
	reg := NewRegistry(client)

	history, err := reg.History(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 message, got %d", len(history))
	}
	// Non-text blocks are dropped from the text.
	if history[0].Content != "Let me search. Found it." {
		t.Errorf("unexpected content: %q", history[0].Content)
	}
	if len(history[0].ToolCalls) != 1 || history[0].ToolCalls[0].Name != "search" {
		t.Errorf("expected summary tool call, got %+v", history[0].ToolCalls)
	}
}

func TestHistorySkipsNonDisplayRoles(t *testing.T) {
	client := &fakeClient{messages: []types.RawHistoryMessage{
		{Role: "system", Content: json.RawMessage(`"prompt"`)},
		{Role: "tool", Content: json.RawMessage(`"result"`)},
		{Role: "user", Content: json.RawMessage(`"hi"`)},
	}}
	reg := NewRegistry(client)

	history, err := reg.History(context.Background(), "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Role != types.RoleUser {
		t.Errorf("expected only the user message, got %+v", history)
	}
}

func TestDelete(t *testing.T) {
	client := &fakeClient{}
	reg := NewRegistry(client)

	if err := reg.Delete(context.Background(), "s1"); err != nil {
		t.Fatal(err)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "s1" {
		t.Errorf("expected delete of s1, got %v", client.deleted)
	}
}

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"hello world", "hello world"},
		{"  first line\nsecond line", "first line"},
		{"", ""},
		{"一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十超出", "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十…"},
	}
	for _, c := range cases {
		if got := DeriveTitle(c.in); got != c.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
