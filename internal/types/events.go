// internal/types/events.go
package types

import "encoding/json"

// EventType discriminates StreamEvent variants. Unrecognized values are
// preserved so consumers can log and drop them instead of failing.
type EventType string

const (
	EventTextDelta EventType = "text_delta"
	EventToolStart EventType = "tool_start"
	EventToolEnd   EventType = "tool_end"
	EventDone      EventType = "done"
	EventFinalDone EventType = "final_done"
	EventError     EventType = "error"
)

// StreamEvent is one typed event of an in-flight generation. Events are
// owned by the channel for the duration of one generation; the engine
// is the sole consumer.
//
// done signals one model turn finished while a tool-use loop may still
// continue on the same channel. Only final_done or error terminates the
// generation.
type StreamEvent struct {
	Type EventType `json:"type"`

	// text_delta
	Text string `json:"text,omitempty"`

	// tool_start / tool_end
	ToolID    string          `json:"tool_id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Result    *ToolResult     `json:"result,omitempty"`

	// error
	Message string `json:"message,omitempty"`

	// final_done
	Usage *Usage `json:"usage,omitempty"`
}

// Terminal reports whether the event closes the channel. done is
// deliberately not terminal: treating it as such loses tool-result
// events still in flight.
func (e StreamEvent) Terminal() bool {
	return e.Type == EventFinalDone || e.Type == EventError
}
