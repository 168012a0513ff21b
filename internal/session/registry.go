// internal/session/registry.go

// Package session provides CRUD over named conversation topics against
// the agent backend, including normalization of heterogeneous stored
// history into displayable messages.
package session

import (
	"context"
	"fmt"

	"github.com/terryso/proxycast/internal/types"
	"github.com/terryso/proxycast/pkg/agent"
)

// Registry wraps the backend session operations. It holds no state of
// its own; the engine owns the active-session id.
type Registry struct {
	client agent.Client
}

// NewRegistry creates a Registry over the given backend client.
func NewRegistry(client agent.Client) *Registry {
	return &Registry{client: client}
}

// CreateOptions carries the context a new session is created with.
type CreateOptions struct {
	Provider     string
	Model        string
	SystemPrompt string
	Extra        map[string]string
}

// List returns all sessions. Callers are expected to fail open: a
// listing failure means an empty list in the UI, not a crash.
func (r *Registry) List(ctx context.Context) ([]types.Session, error) {
	sessions, err := r.client.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Create creates a new backend session and returns its id.
func (r *Registry) Create(ctx context.Context, opts CreateOptions) (types.SessionID, error) {
	id, err := r.client.CreateSession(ctx, agent.CreateSessionRequest{
		Provider:     opts.Provider,
		Model:        opts.Model,
		SystemPrompt: opts.SystemPrompt,
		Extra:        opts.Extra,
	})
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// History fetches and normalizes the stored messages of a session for
// display. Stored content is either plain text or a list of content
// blocks; non-text blocks are dropped from the text, tool_use blocks
// are kept as summary tool calls.
func (r *Registry) History(ctx context.Context, id types.SessionID) ([]*types.Message, error) {
	raw, err := r.client.SessionMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	messages := make([]*types.Message, 0, len(raw))
	for _, rm := range raw {
		msg, ok := normalize(rm)
		if !ok {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Delete removes the session from the backend.
func (r *Registry) Delete(ctx context.Context, id types.SessionID) error {
	if err := r.client.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
