// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type MessageID string
type SessionID string
type ChannelName string

func NewMessageID() MessageID {
	return MessageID(uuid.New().String())
}

// NewChannelName derives the event channel name for one generation from
// the placeholder message id. Placeholder ids are freshly generated per
// send, so no two generations ever share a channel name.
func NewChannelName(id MessageID) ChannelName {
	return ChannelName("chat-events:" + string(id))
}
