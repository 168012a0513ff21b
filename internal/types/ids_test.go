// internal/types/ids_test.go
package types

import (
	"testing"
)

func TestNewMessageID(t *testing.T) {
	id := NewMessageID()
	if id == "" {
		t.Error("expected non-empty MessageID")
	}
	if len(string(id)) != 36 {
		t.Errorf("expected UUID format, got %s", id)
	}
}

func TestChannelNameUnique(t *testing.T) {
	a := NewChannelName(NewMessageID())
	b := NewChannelName(NewMessageID())
	if a == b {
		t.Error("expected distinct channel names for distinct message ids")
	}
}

func TestChannelNameFormat(t *testing.T) {
	name := NewChannelName(MessageID("abc"))
	if name != ChannelName("chat-events:abc") {
		t.Errorf("unexpected channel name: %s", name)
	}
}
