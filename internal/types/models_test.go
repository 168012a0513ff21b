// internal/types/models_test.go
package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMessageSerialization(t *testing.T) {
	msg := Message{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Content:   "Hi there",
		Timestamp: time.Now(),
		ContentParts: []ContentPart{
			{Type: PartText, Text: "Hi there"},
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Content != msg.Content {
		t.Errorf("expected content %q, got %q", msg.Content, decoded.Content)
	}
	if len(decoded.ContentParts) != 1 || decoded.ContentParts[0].Type != PartText {
		t.Errorf("content parts did not survive round trip: %+v", decoded.ContentParts)
	}
}

func TestStreamEventTerminal(t *testing.T) {
	cases := []struct {
		typ      EventType
		terminal bool
	}{
		{EventTextDelta, false},
		{EventToolStart, false},
		{EventToolEnd, false},
		{EventDone, false},
		{EventFinalDone, true},
		{EventError, true},
	}
	for _, c := range cases {
		ev := StreamEvent{Type: c.typ}
		if ev.Terminal() != c.terminal {
			t.Errorf("%s: expected terminal=%v", c.typ, c.terminal)
		}
	}
}
