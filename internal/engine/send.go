// internal/engine/send.go
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/terryso/proxycast/internal/session"
	"github.com/terryso/proxycast/internal/stream"
	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/pkg/agent"
)

const (
	thinkingLabel = "Thinking"
	stoppedMarker = "[stopped]"
)

// SendOption configures one send.
type SendOption func(*sendConfig)

type sendConfig struct {
	provider string
	model    string
}

// WithProvider overrides the preferred provider for this send.
func WithProvider(id string) SendOption {
	return func(c *sendConfig) { c.provider = id }
}

// WithModel overrides the preferred model for this send.
func WithModel(id string) SendOption {
	return func(c *sendConfig) { c.model = id }
}

// Send issues one user message and starts a streaming generation.
// The user message and a thinking placeholder are appended to the
// transcript synchronously, before any network activity. Send returns
// once the request is accepted; the response accumulates on the
// placeholder as events arrive. At most one generation may be
// outstanding: a second Send while busy fails fast.
func (e *Engine) Send(ctx context.Context, text string, images []types.Image, opts ...SendOption) (*types.Message, error) {
	if !e.gate.TryAcquire(1) {
		return nil, fmt.Errorf("a generation is already in flight")
	}

	cfg := sendConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Step 1: optimistic append, before any I/O.
	e.mu.Lock()
	if cfg.provider == "" {
		cfg.provider = e.provider
	}
	if cfg.model == "" {
		cfg.model = e.model
	}
	userMsg := &types.Message{
		ID:        types.NewMessageID(),
		Role:      types.RoleUser,
		Content:   text,
		Images:    images,
		Timestamp: time.Now(),
	}
	placeholder := &types.Message{
		ID:            types.NewMessageID(),
		Role:          types.RoleAssistant,
		IsThinking:    true,
		ThinkingLabel: thinkingLabel,
		Timestamp:     time.Now(),
	}
	e.transcript = append(e.transcript, userMsg, placeholder)
	e.sending = true
	e.mirror()
	e.mu.Unlock()

	// Step 2: ensure an active session. Failure rolls back the
	// placeholder but keeps the user message for a retry.
	sessionID, err := e.ensureSession(ctx, text, cfg)
	if err != nil {
		e.mu.Lock()
		e.removeMessageLocked(placeholder.ID)
		e.sending = false
		e.mirror()
		e.mu.Unlock()
		e.gate.Release(1)
		e.notifyError(fmt.Sprintf("could not start conversation: %v", err))
		return nil, err
	}

	// Step 3: open the uniquely named event channel before issuing the
	// request, so no event can arrive unheard.
	gen := &generation{
		placeholder: placeholder,
		sessionID:   sessionID,
		asm:         stream.NewAssembler(placeholder, e.proposals),
	}
	name := types.NewChannelName(placeholder.ID)
	sub, err := e.broker.Subscribe(name, func(ev types.StreamEvent) {
		e.handleEvent(gen, ev)
	})
	if err != nil {
		// Channel names are unique per send; this is a programming error.
		e.mu.Lock()
		e.removeMessageLocked(placeholder.ID)
		e.sending = false
		e.mirror()
		e.mu.Unlock()
		e.gate.Release(1)
		return nil, fmt.Errorf("open event channel: %w", err)
	}
	gen.sub = sub

	e.mu.Lock()
	e.current = gen
	e.mu.Unlock()

	// Step 4: issue the streaming request.
	err = e.client.SendMessage(ctx, agent.SendRequest{
		Text:      text,
		Images:    images,
		SessionID: sessionID,
		Channel:   name,
		Provider:  cfg.provider,
		Model:     cfg.model,
	})
	if err != nil {
		e.mu.Lock()
		if e.current == gen {
			e.finishLocked(gen, fmt.Sprintf("request failed: %v", err))
		}
		e.mu.Unlock()
		e.notifyError(fmt.Sprintf("send failed: %v", err))
		return nil, fmt.Errorf("send message: %w", err)
	}

	slog.Debug("generation started",
		"session_id", string(sessionID),
		"channel", string(name),
		"placeholder_id", string(placeholder.ID),
	)
	return placeholder, nil
}

// ensureSession returns the active session id, creating a session
// lazily on the first send of a conversation. Idempotent: with a
// session already held it returns the existing id untouched.
func (e *Engine) ensureSession(ctx context.Context, firstText string, cfg sendConfig) (types.SessionID, error) {
	e.mu.Lock()
	if e.hasSession {
		id := e.activeSession
		e.mu.Unlock()
		return id, nil
	}
	prompt := e.systemPrompt
	e.mu.Unlock()

	id, err := e.registry.Create(ctx, session.CreateOptions{
		Provider:     cfg.provider,
		Model:        cfg.model,
		SystemPrompt: prompt,
		Extra:        map[string]string{"title": session.DeriveTitle(firstText)},
	})
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.activeSession = id
	e.hasSession = true
	e.mirror()
	e.mu.Unlock()
	return id, nil
}

// handleEvent applies one stream event to the in-flight generation.
// It runs on the publisher's goroutine, serialized by the engine lock.
// Events for a generation that is no longer current (stopped, or
// superseded) are dropped.
func (e *Engine) handleEvent(gen *generation, ev types.StreamEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current != gen {
		slog.Debug("dropping event for stale generation", "type", string(ev.Type))
		return
	}

	if e.journal != nil {
		if err := e.journal.Append(gen.sessionID, ev); err != nil {
			slog.Warn("journal append", "error", err)
		}
	}

	switch ev.Type {
	case types.EventTextDelta:
		gen.asm.Apply(ev)
		e.cues.TextDelta()
		e.mirror()
	case types.EventToolStart:
		gen.asm.Apply(ev)
		e.cues.ToolStarted(ev.ToolName)
		e.mirror()
	case types.EventToolEnd:
		gen.asm.Apply(ev)
		e.mirror()
	case types.EventDone:
		// One model turn finished, but the tool loop may continue on
		// this channel. Only final_done or error ends the generation.
		slog.Debug("model turn done, awaiting tool loop")
	case types.EventFinalDone:
		if ev.Usage != nil {
			e.lastUsage = ev.Usage
		}
		e.finishLocked(gen, "")
	case types.EventError:
		e.finishLocked(gen, ev.Message)
		e.notifyError(ev.Message)
	default:
		gen.asm.Apply(ev)
	}
}

// finishLocked ends the generation: marks the placeholder final,
// releases the channel handle and the send gate. Partial content that
// arrived before an error is preserved; the error text is only shown
// when nothing was generated. Caller must hold the lock.
func (e *Engine) finishLocked(gen *generation, errText string) {
	e.current = nil
	sub := gen.sub
	gen.sub = nil
	if sub != nil {
		sub.Close()
	}

	msg := gen.placeholder
	msg.IsThinking = false
	msg.ThinkingLabel = ""
	if errText != "" && msg.Content == "" {
		msg.Content = errText
	}

	e.sending = false
	e.gate.Release(1)
	e.mirror()
}

// StopSending cancels the in-flight generation cooperatively: the
// local listener detaches, the backend is not told to stop computing.
// Idempotent; with nothing in flight it is a no-op.
func (e *Engine) StopSending() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return
	}
	gen := e.current
	if gen.placeholder.Content == "" {
		gen.placeholder.Content = stoppedMarker
	}
	e.finishLocked(gen, "")
}

// removeMessageLocked drops the message with the given id from the
// transcript. Caller must hold the lock.
func (e *Engine) removeMessageLocked(id types.MessageID) {
	for i, msg := range e.transcript {
		if msg.ID == id {
			e.transcript = append(e.transcript[:i], e.transcript[i+1:]...)
			return
		}
	}
}
