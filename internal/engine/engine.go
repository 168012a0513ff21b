// internal/engine/engine.go

// Package engine orchestrates the streaming conversation: it owns the
// transcript, the active session id, and the single in-flight
// generation, and is the sole consumer of stream events.
package engine

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/terryso/proxycast/internal/audio"
	"github.com/terryso/proxycast/internal/channel"
	"github.com/terryso/proxycast/internal/notify"
	"github.com/terryso/proxycast/internal/session"
	"github.com/terryso/proxycast/internal/state"
	"github.com/terryso/proxycast/internal/stream"
	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/internal/usage"
	"github.com/terryso/proxycast/pkg/agent"
)

// Options wires the engine's collaborators. Client, Registry, Broker,
// Durable and Ephemeral are required; the rest default to no-ops.
type Options struct {
	Client    agent.Client
	Registry  *session.Registry
	Broker    *channel.Broker
	Durable   types.DurableStore
	Ephemeral types.EphemeralStore

	Cues      types.AudioCues
	Notifier  *notify.Registry
	Journal   *state.Journal
	Meter     *usage.Meter
	Proposals types.FileProposalSink

	SystemPrompt string
}

// generation is the state of one in-flight send. The subscription
// handle is exclusively owned here and must be released on every exit
// path.
type generation struct {
	placeholder *types.Message
	sessionID   types.SessionID
	sub         *channel.Subscription
	asm         *stream.Assembler
}

// Engine is the conversation engine. All transcript mutation happens
// under one mutex; events are applied synchronously on the publisher's
// goroutine, so the engine is effectively single-writer.
type Engine struct {
	client    agent.Client
	registry  *session.Registry
	broker    *channel.Broker
	durable   types.DurableStore
	ephemeral types.EphemeralStore
	cues      types.AudioCues
	notifier  *notify.Registry
	journal   *state.Journal
	meter     *usage.Meter
	proposals types.FileProposalSink

	mu            sync.Mutex
	transcript    []*types.Message
	activeSession types.SessionID
	hasSession    bool
	sending       bool
	current       *generation

	provider     string
	model        string
	systemPrompt string
	lastUsage    *types.Usage

	// gate enforces at most one outstanding generation.
	gate *semaphore.Weighted
}

// New creates an Engine, restoring the active session id and transcript
// from the ephemeral store and preferences from the durable store.
func New(opts Options) *Engine {
	e := &Engine{
		client:       opts.Client,
		registry:     opts.Registry,
		broker:       opts.Broker,
		durable:      opts.Durable,
		ephemeral:    opts.Ephemeral,
		cues:         opts.Cues,
		notifier:     opts.Notifier,
		journal:      opts.Journal,
		meter:        opts.Meter,
		proposals:    opts.Proposals,
		systemPrompt: opts.SystemPrompt,
		gate:         semaphore.NewWeighted(1),
	}
	if e.cues == nil {
		e.cues = audio.Nop{}
	}

	e.provider = e.durable.Provider()
	e.model = e.durable.Model()

	if id, ok := e.ephemeral.ActiveSession(); ok {
		e.activeSession = id
		e.hasSession = true
	}
	transcript, err := e.ephemeral.LoadTranscript()
	if err != nil {
		slog.Warn("restore transcript", "error", err)
	} else {
		e.transcript = transcript
	}
	return e
}

// Transcript returns a copy of the current transcript slice. Messages
// are shared; callers must not mutate them.
func (e *Engine) Transcript() []*types.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*types.Message, len(e.transcript))
	copy(out, e.transcript)
	return out
}

// IsSending reports whether a generation is in flight.
func (e *Engine) IsSending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sending
}

// ActiveSession returns the active session id, if any.
func (e *Engine) ActiveSession() (types.SessionID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeSession, e.hasSession
}

// Provider returns the selected provider id.
func (e *Engine) Provider() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.provider
}

// Model returns the selected model id.
func (e *Engine) Model() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// LastUsage returns the token usage reported by the most recent
// completed generation, or nil when none has reported any.
func (e *Engine) LastUsage() *types.Usage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastUsage
}

// ContextTokens estimates the token footprint of the transcript, or 0
// when no meter is configured.
func (e *Engine) ContextTokens() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.meter == nil {
		return 0
	}
	return e.meter.EstimateTranscript(e.transcript)
}

// notifyError surfaces a transient error to the display layer.
func (e *Engine) notifyError(message string) {
	if e.notifier != nil {
		e.notifier.Notify(notify.KindError, message)
	}
}

// mirror persists the active session id and transcript to the
// ephemeral store. Failures are logged, never fatal. Caller must hold
// the lock.
func (e *Engine) mirror() {
	if e.hasSession {
		e.ephemeral.SetActiveSession(e.activeSession)
	} else {
		e.ephemeral.ClearActiveSession()
	}
	if err := e.ephemeral.SaveTranscript(e.transcript); err != nil {
		slog.Warn("mirror transcript", "error", err)
	}
}
