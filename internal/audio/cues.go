// internal/audio/cues.go

// Package audio implements the cue dispatcher port. Playback itself is
// an external collaborator; this package owns only the trigger
// contract and its throttling.
package audio

import (
	"io"
	"sync"
	"time"

	"github.com/terryso/proxycast/internal/types"
)

// Compile-time interface compliance checks.
var _ types.AudioCues = (*Throttled)(nil)
var _ types.AudioCues = Nop{}
var _ types.AudioCues = (*Bell)(nil)

// Nop discards all cues. Used when audio is disabled.
type Nop struct{}

func (Nop) ToolStarted(string) {}
func (Nop) TextDelta()         {}

// Bell rings the terminal bell for each cue. Write errors are ignored;
// a cue is advisory.
type Bell struct {
	W io.Writer
}

func (b *Bell) ToolStarted(string) { b.ring() }
func (b *Bell) TextDelta()         { b.ring() }

func (b *Bell) ring() {
	io.WriteString(b.W, "\a")
}

// Throttled forwards cues to an inner sink, rate-limiting text-delta
// cues to at most one per interval. Tool-start cues always pass
// through; they are rare and meaningful individually.
type Throttled struct {
	inner    types.AudioCues
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewThrottled wraps inner with the given minimum interval between
// text-delta cues.
func NewThrottled(inner types.AudioCues, interval time.Duration) *Throttled {
	return &Throttled{
		inner:    inner,
		interval: interval,
		now:      time.Now,
	}
}

// ToolStarted forwards unconditionally.
func (t *Throttled) ToolStarted(name string) {
	t.inner.ToolStarted(name)
}

// TextDelta forwards at most once per interval; suppressed cues are
// dropped, not queued.
func (t *Throttled) TextDelta() {
	t.mu.Lock()
	now := t.now()
	if now.Sub(t.last) < t.interval {
		t.mu.Unlock()
		return
	}
	t.last = now
	t.mu.Unlock()

	t.inner.TextDelta()
}
