// internal/types/models.go
package types

import (
	"encoding/json"
	"time"
)

// ToolStatus is the lifecycle state of a ToolCall. A call is created as
// Running and transitions exactly once to Completed or Failed.
type ToolStatus string

const (
	ToolRunning   ToolStatus = "running"
	ToolCompleted ToolStatus = "completed"
	ToolFailed    ToolStatus = "failed"
)

// ToolResult is the outcome of a single tool invocation.
type ToolResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ToolCall is one backend-initiated action surfaced inline in the
// transcript. IDs are unique within a message, not globally.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Status    ToolStatus      `json:"status"`
	Result    *ToolResult     `json:"result,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`
}

// ContentPart is one interleaved unit of an assistant message: either a
// text span or a tool invocation, discriminated by Type.
type ContentPart struct {
	Type     PartType  `json:"type"`
	Text     string    `json:"text,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
}

type PartType string

const (
	PartText    PartType = "text"
	PartToolUse PartType = "tool_use"
)

// Image is an opaque attached blob with a media-type tag.
type Image struct {
	MediaType string `json:"media_type"`
	Data      []byte `json:"data"`
}

// Message is one transcript entry.
type Message struct {
	ID            MessageID     `json:"id"`
	Role          string        `json:"role"`
	Content       string        `json:"content"`
	ContentParts  []ContentPart `json:"content_parts,omitempty"`
	Images        []Image       `json:"images,omitempty"`
	IsThinking    bool          `json:"is_thinking"`
	ThinkingLabel string        `json:"thinking_label,omitempty"`
	ToolCalls     []*ToolCall   `json:"tool_calls,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is one persisted conversation thread (a topic).
type Session struct {
	ID           SessionID `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	MessageCount int       `json:"message_count"`
}

// Usage tracks token consumption reported by the backend on final_done.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}
