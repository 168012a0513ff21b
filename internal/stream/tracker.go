// internal/stream/tracker.go

// Package stream folds the typed event stream of one generation into
// the content parts of the assistant message being built.
package stream

import (
	"encoding/json"
	"time"

	"github.com/terryso/proxycast/internal/types"
)

// Tracker enforces the tool-call state machine for a single message:
// running -> completed|failed, exactly one transition. Tool ids are
// only unique within a message, so a Tracker never outlives one.
type Tracker struct {
	calls map[string]*types.ToolCall
	order []string
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{calls: make(map[string]*types.ToolCall)}
}

// Start registers a running tool call. A duplicate id is a no-op and
// returns nil; the stream can replay events and must not corrupt state.
func (t *Tracker) Start(id, name string, args json.RawMessage) *types.ToolCall {
	if _, exists := t.calls[id]; exists {
		return nil
	}
	call := &types.ToolCall{
		ID:        id,
		Name:      name,
		Arguments: args,
		Status:    types.ToolRunning,
		StartTime: time.Now(),
	}
	t.calls[id] = call
	t.order = append(t.order, id)
	return call
}

// Finish moves the call to its terminal state. Unknown ids and calls
// already terminal are no-ops; tool-end events can arrive out of order
// or duplicated.
func (t *Tracker) Finish(id string, result *types.ToolResult) *types.ToolCall {
	call, ok := t.calls[id]
	if !ok || call.Status != types.ToolRunning {
		return nil
	}
	if result != nil && result.Success {
		call.Status = types.ToolCompleted
	} else {
		call.Status = types.ToolFailed
	}
	call.Result = result
	now := time.Now()
	call.EndTime = &now
	return call
}

// Get returns the call with the given id within this message.
func (t *Tracker) Get(id string) (*types.ToolCall, bool) {
	call, ok := t.calls[id]
	return call, ok
}

// All returns the tracked calls in start order.
func (t *Tracker) All() []*types.ToolCall {
	out := make([]*types.ToolCall, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.calls[id])
	}
	return out
}
