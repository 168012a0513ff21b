// internal/usage/meter_test.go
package usage

import (
	"encoding/json"
	"testing"

	"github.com/terryso/proxycast/internal/types"
)

func TestCountText(t *testing.T) {
	meter, err := NewMeter("gpt-4")
	if err != nil {
		t.Fatal(err)
	}

	if n := meter.CountText(""); n != 0 {
		t.Errorf("expected 0 tokens for empty string, got %d", n)
	}
	if n := meter.CountText("hello world"); n == 0 {
		t.Error("expected non-zero tokens for text")
	}
}

func TestUnknownModelFallsBack(t *testing.T) {
	meter, err := NewMeter("some-future-model")
	if err != nil {
		t.Fatalf("expected fallback tokenizer, got error: %v", err)
	}
	if n := meter.CountText("hello"); n == 0 {
		t.Error("expected non-zero tokens from fallback tokenizer")
	}
}

func TestEstimateTranscript(t *testing.T) {
	meter, err := NewMeter("gpt-4")
	if err != nil {
		t.Fatal(err)
	}

	messages := []*types.Message{
		{Role: types.RoleUser, Content: "hello there"},
		{
			Role:    types.RoleAssistant,
			Content: "Let me check",
			ToolCalls: []*types.ToolCall{{
				ID:        "T1",
				Name:      "search",
				Arguments: json.RawMessage(`{"query":"weather"}`),
				Status:    types.ToolCompleted,
				Result:    &types.ToolResult{Success: true, Output: "sunny"},
			}},
		},
	}

	total := meter.EstimateTranscript(messages)
	textOnly := meter.CountText("hello there") + meter.CountText("Let me check")
	if total <= textOnly {
		t.Errorf("expected tool calls to add tokens: total=%d textOnly=%d", total, textOnly)
	}
}
