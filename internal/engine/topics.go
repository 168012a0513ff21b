// internal/engine/topics.go
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/terryso/proxycast/internal/types"
)

// Topics lists the known sessions. Fails open: a listing failure is
// logged and surfaces as an empty list, never a crash.
func (e *Engine) Topics(ctx context.Context) []types.Session {
	sessions, err := e.registry.List(ctx)
	if err != nil {
		slog.Warn("list topics", "error", err)
		return nil
	}
	return sessions
}

// SwitchTopic makes the given session active and replaces the
// transcript with its normalized history. Switching to the already
// active session is a no-op. A history fetch failure clears the
// transcript and notifies, but the switch still completes so a retry
// is simply re-switching.
//
// An in-flight generation is deliberately not cancelled: it keeps
// accumulating against its original session in the background.
func (e *Engine) SwitchTopic(ctx context.Context, id types.SessionID) error {
	e.mu.Lock()
	if e.hasSession && e.activeSession == id {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	history, err := e.registry.History(ctx, id)

	e.mu.Lock()
	if err != nil {
		// Stale transcript is worse than an empty one.
		e.transcript = nil
	} else {
		e.transcript = history
	}
	e.activeSession = id
	e.hasSession = true
	e.mirror()
	e.mu.Unlock()

	if err != nil {
		e.notifyError(fmt.Sprintf("could not load topic history: %v", err))
		return fmt.Errorf("switch topic: %w", err)
	}
	return nil
}

// DeleteTopic removes the session from the backend. Deleting the
// active topic also clears the transcript and the active session id.
func (e *Engine) DeleteTopic(ctx context.Context, id types.SessionID) error {
	if err := e.registry.Delete(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	if e.hasSession && e.activeSession == id {
		e.transcript = nil
		e.activeSession = ""
		e.hasSession = false
		e.mirror()
	}
	e.mu.Unlock()
	return nil
}

// ClearMessages resets the transcript and forgets the active session,
// so the next send creates a fresh conversation.
func (e *Engine) ClearMessages() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transcript = nil
	e.activeSession = ""
	e.hasSession = false
	e.mirror()
}

// DeleteMessage removes a message from the local transcript only; the
// backend session is untouched.
func (e *Engine) DeleteMessage(id types.MessageID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeMessageLocked(id)
	e.mirror()
}

// EditMessage rewrites a message's text in the local transcript only.
func (e *Engine) EditMessage(id types.MessageID, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, msg := range e.transcript {
		if msg.ID != id {
			continue
		}
		msg.Content = text
		if len(msg.ContentParts) > 0 {
			msg.ContentParts = []types.ContentPart{{Type: types.PartText, Text: text}}
		}
		break
	}
	e.mirror()
}

// SetProvider selects the provider for subsequent sends and persists
// the preference. The active session is kept: changing provider or
// model never invalidates conversation context.
func (e *Engine) SetProvider(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.provider = id
	if err := e.durable.SetProvider(id); err != nil {
		slog.Warn("persist provider preference", "error", err)
	}
}

// SetModel selects the model for subsequent sends and persists the
// preference. The active session is kept.
func (e *Engine) SetModel(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.model = id
	if err := e.durable.SetModel(id); err != nil {
		slog.Warn("persist model preference", "error", err)
	}
}

// SetSystemPrompt changes the system prompt for future sessions. A
// differing prompt invalidates the current conversation context, so
// the active session is dropped and the next send re-creates one.
func (e *Engine) SetSystemPrompt(prompt string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if prompt == e.systemPrompt {
		return
	}
	e.systemPrompt = prompt
	if e.hasSession {
		e.activeSession = ""
		e.hasSession = false
		e.mirror()
	}
}
