// Package agent defines the client interface to the local agent
// process. Implementations handle transport-specific details; the
// conversation engine only sees this interface and the event channels
// the backend publishes into.
package agent

import (
	"context"

	"github.com/terryso/proxycast/internal/types"
)

// Client is the set of backend operations the engine consumes.
// SendMessage is the one streaming call: it returns once the request is
// accepted, and the response arrives as StreamEvents on the channel
// named in the request.
type Client interface {
	// StartAgent launches the agent process if it is not running.
	StartAgent(ctx context.Context) error

	// StopAgent stops the agent process.
	StopAgent(ctx context.Context) error

	// Status reports whether the agent process is running.
	Status(ctx context.Context) (Status, error)

	// CreateSession creates a backend conversation session.
	CreateSession(ctx context.Context, req CreateSessionRequest) (types.SessionID, error)

	// SendMessage issues a streaming generation request. Events are
	// delivered asynchronously on req.Channel.
	SendMessage(ctx context.Context, req SendRequest) error

	// ListSessions returns all known sessions.
	ListSessions(ctx context.Context) ([]types.Session, error)

	// SessionMessages returns the raw stored messages of a session.
	SessionMessages(ctx context.Context, id types.SessionID) ([]types.RawHistoryMessage, error)

	// DeleteSession removes a session and its backend state.
	DeleteSession(ctx context.Context, id types.SessionID) error
}

// Status describes the agent process.
type Status struct {
	Running bool `json:"running"`
}

// CreateSessionRequest carries the context a new session is created
// with.
type CreateSessionRequest struct {
	Provider     string            `json:"provider_id"`
	Model        string            `json:"model,omitempty"`
	SystemPrompt string            `json:"system_prompt,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// SendRequest carries one user send.
type SendRequest struct {
	Text      string            `json:"text"`
	Images    []types.Image     `json:"images,omitempty"`
	SessionID types.SessionID   `json:"session_id"`
	Channel   types.ChannelName `json:"channel"`
	Provider  string            `json:"provider_id,omitempty"`
	Model     string            `json:"model,omitempty"`
}
