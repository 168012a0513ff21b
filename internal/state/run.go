// internal/state/run.go
package state

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/terryso/proxycast/internal/types"
)

// RunStore is the ephemeral persistence port: it outlives engine
// re-construction (a view reload) within one process run, but not a
// restart. The transcript is held as serialized JSON so restoring it
// exercises the same round trip a real reload would, timestamps
// included.
type RunStore struct {
	mu         sync.RWMutex
	sessionID  types.SessionID
	hasSession bool
	transcript []byte
}

// NewRunStore creates an empty RunStore.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// ActiveSession returns the stored session id, if any.
func (s *RunStore) ActiveSession() (types.SessionID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID, s.hasSession
}

// SetActiveSession records the current session id.
func (s *RunStore) SetActiveSession(id types.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
	s.hasSession = true
}

// ClearActiveSession removes the stored session id.
func (s *RunStore) ClearActiveSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = ""
	s.hasSession = false
}

// SaveTranscript serializes and stores the transcript.
func (s *RunStore) SaveTranscript(messages []*types.Message) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = data
	return nil
}

// LoadTranscript returns the stored transcript, or nil when none was
// saved.
func (s *RunStore) LoadTranscript() ([]*types.Message, error) {
	s.mu.RLock()
	data := s.transcript
	s.mu.RUnlock()

	if data == nil {
		return nil, nil
	}
	var messages []*types.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	return messages, nil
}
