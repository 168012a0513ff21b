// internal/state/run_test.go
package state

import (
	"testing"
	"time"

	"github.com/terryso/proxycast/internal/types"
)

func TestRunStoreActiveSession(t *testing.T) {
	store := NewRunStore()

	if _, ok := store.ActiveSession(); ok {
		t.Error("expected no active session initially")
	}

	store.SetActiveSession("s1")
	id, ok := store.ActiveSession()
	if !ok || id != "s1" {
		t.Errorf("expected active session s1, got %q ok=%v", id, ok)
	}

	store.ClearActiveSession()
	if _, ok := store.ActiveSession(); ok {
		t.Error("expected no active session after clear")
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	store := NewRunStore()

	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	end := ts.Add(2 * time.Second)
	original := []*types.Message{
		{
			ID:        types.NewMessageID(),
			Role:      types.RoleUser,
			Content:   "hello",
			Timestamp: ts,
		},
		{
			ID:      types.NewMessageID(),
			Role:    types.RoleAssistant,
			Content: "Hi there",
			ContentParts: []types.ContentPart{
				{Type: types.PartToolUse, ToolCall: &types.ToolCall{
					ID:        "T1",
					Name:      "search",
					Status:    types.ToolCompleted,
					Result:    &types.ToolResult{Success: true, Output: "ok"},
					StartTime: ts,
					EndTime:   &end,
				}},
				{Type: types.PartText, Text: "Hi there"},
			},
			Timestamp: ts,
		},
	}

	if err := store.SaveTranscript(original); err != nil {
		t.Fatal(err)
	}

	restored, err := store.LoadTranscript()
	if err != nil {
		t.Fatal(err)
	}

	if len(restored) != len(original) {
		t.Fatalf("expected %d messages, got %d", len(original), len(restored))
	}
	for i := range original {
		if restored[i].ID != original[i].ID {
			t.Errorf("message %d: id mismatch", i)
		}
		if restored[i].Role != original[i].Role {
			t.Errorf("message %d: role mismatch", i)
		}
		if restored[i].Content != original[i].Content {
			t.Errorf("message %d: content mismatch", i)
		}
		if !restored[i].Timestamp.Equal(original[i].Timestamp) {
			t.Errorf("message %d: timestamp mismatch: %v vs %v", i, restored[i].Timestamp, original[i].Timestamp)
		}
	}

	parts := restored[1].ContentParts
	if len(parts) != 2 || parts[0].Type != types.PartToolUse || parts[1].Text != "Hi there" {
		t.Errorf("content parts did not survive round trip: %+v", parts)
	}
	if parts[0].ToolCall.Status != types.ToolCompleted {
		t.Errorf("expected completed tool call, got %s", parts[0].ToolCall.Status)
	}
}

func TestLoadTranscriptEmpty(t *testing.T) {
	store := NewRunStore()
	messages, err := store.LoadTranscript()
	if err != nil {
		t.Fatal(err)
	}
	if messages != nil {
		t.Errorf("expected nil transcript, got %v", messages)
	}
}
