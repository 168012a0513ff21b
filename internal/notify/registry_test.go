// internal/notify/registry_test.go
package notify

import (
	"testing"
)

func TestRegistryNotify(t *testing.T) {
	reg := NewRegistry()

	var gotKind Kind
	var gotMsg string
	reg.Register(KindError, func(kind Kind, message string) {
		gotKind = kind
		gotMsg = message
	})

	reg.Notify(KindError, "session create failed")

	if gotKind != KindError {
		t.Errorf("expected kind %q, got %q", KindError, gotKind)
	}
	if gotMsg != "session create failed" {
		t.Errorf("expected message %q, got %q", "session create failed", gotMsg)
	}
}

func TestRegistryNoHandler(t *testing.T) {
	reg := NewRegistry()
	// Must not panic or block.
	reg.Notify(KindInfo, "nobody listening")
}

func TestRegistryMultipleHandlers(t *testing.T) {
	reg := NewRegistry()

	var first, second int
	reg.Register(KindError, func(Kind, string) { first++ })
	reg.Register(KindError, func(Kind, string) { second++ })
	reg.Register(KindInfo, func(Kind, string) { t.Error("info handler must not fire") })

	reg.Notify(KindError, "boom")

	if first != 1 || second != 1 {
		t.Errorf("expected both error handlers called once, got %d and %d", first, second)
	}
}
