// internal/session/normalize.go
package session

import (
	"encoding/json"
	"time"

	"github.com/terryso/proxycast/internal/types"
)

// contentBlock is one element of structured stored content.
type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// normalize converts one raw stored message into a display message.
// Returns false for roles that have no place in the transcript view.
func normalize(raw types.RawHistoryMessage) (*types.Message, bool) {
	if raw.Role != types.RoleUser && raw.Role != types.RoleAssistant {
		return nil, false
	}

	msg := &types.Message{
		ID:   types.NewMessageID(),
		Role: raw.Role,
	}
	if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
		msg.Timestamp = ts
	}

	// Plain string content is the common stored form.
	var text string
	if err := json.Unmarshal(raw.Content, &text); err == nil {
		msg.Content = text
		return msg, true
	}

	// Otherwise a block list: keep text blocks, surface tool_use blocks
	// as summary calls, drop everything else.
	var blocks []contentBlock
	if err := json.Unmarshal(raw.Content, &blocks); err != nil {
		return nil, false
	}
	for _, block := range blocks {
		switch block.Type {
		case "text":
			msg.Content += block.Text
		case "tool_use":
			msg.ToolCalls = append(msg.ToolCalls, &types.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: block.Input,
				Status:    types.ToolCompleted,
			})
		}
	}
	return msg, true
}
