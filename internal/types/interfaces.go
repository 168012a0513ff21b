// internal/types/interfaces.go
package types

import "encoding/json"

// DurableStore is the persistence port that survives application
// restarts. It holds user preferences only.
type DurableStore interface {
	Provider() string
	Model() string
	SetProvider(id string) error
	SetModel(id string) error
}

// EphemeralStore is the persistence port that survives view reloads
// within one run but not a process restart.
type EphemeralStore interface {
	ActiveSession() (SessionID, bool)
	SetActiveSession(id SessionID)
	ClearActiveSession()
	SaveTranscript(messages []*Message) error
	LoadTranscript() ([]*Message, error)
}

// AudioCues is notified on tool invocation start and on text deltas.
// Throttling of text-delta cues is the implementation's concern, not
// the caller's. Implementations own no conversation state.
type AudioCues interface {
	ToolStarted(name string)
	TextDelta()
}

// FileProposal is the eagerly surfaced path/content of a write-style
// tool call, published before the tool result is known.
type FileProposal struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileProposalSink receives best-effort file proposals for the UI
// layer. Implementations must tolerate proposals for calls that later
// fail.
type FileProposalSink interface {
	Propose(toolID string, proposal FileProposal)
}

// RawHistoryMessage is one stored message as the backend returns it.
// Content is either a JSON string or a list of content blocks.
type RawHistoryMessage struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp string          `json:"timestamp,omitempty"`
}
