// internal/stream/assembler.go
package stream

import (
	"log/slog"

	"github.com/terryso/proxycast/internal/types"
)

// Assembler folds stream events into the content parts of one assistant
// message. Appended text extends the last text part unless the most
// recent part is a tool_use, in which case a new text part is opened,
// so part order exactly matches event emission order.
//
// Apply never fails: malformed or unrecognized events are logged and
// dropped. That robustness is what keeps one bad event from killing a
// whole generation.
type Assembler struct {
	msg      *types.Message
	tracker  *Tracker
	proposer types.FileProposalSink
}

// NewAssembler creates an Assembler bound to the given message. sink
// may be nil when eager file proposals are not wanted.
func NewAssembler(msg *types.Message, sink types.FileProposalSink) *Assembler {
	return &Assembler{
		msg:      msg,
		tracker:  NewTracker(),
		proposer: sink,
	}
}

// Tracker exposes the tool-call registry for the message being built.
func (a *Assembler) Tracker() *Tracker {
	return a.tracker
}

// Apply folds one event into the message.
func (a *Assembler) Apply(ev types.StreamEvent) {
	switch ev.Type {
	case types.EventTextDelta:
		a.appendText(ev.Text)
	case types.EventToolStart:
		a.startTool(ev)
	case types.EventToolEnd:
		a.endTool(ev)
	case types.EventDone, types.EventFinalDone, types.EventError:
		// Lifecycle events carry no content; the engine handles them.
	default:
		slog.Debug("dropping unrecognized stream event", "type", string(ev.Type))
	}
}

// appendText grows the accumulated content and the interleaved parts.
func (a *Assembler) appendText(text string) {
	if text == "" {
		return
	}
	a.msg.Content += text

	parts := a.msg.ContentParts
	if n := len(parts); n > 0 && parts[n-1].Type == types.PartText {
		parts[n-1].Text += text
		return
	}
	a.msg.ContentParts = append(parts, types.ContentPart{Type: types.PartText, Text: text})
}

func (a *Assembler) startTool(ev types.StreamEvent) {
	call := a.tracker.Start(ev.ToolID, ev.ToolName, ev.Arguments)
	if call == nil {
		slog.Debug("duplicate tool_start ignored", "tool_id", ev.ToolID)
		return
	}
	a.msg.ContentParts = append(a.msg.ContentParts, types.ContentPart{Type: types.PartToolUse, ToolCall: call})
	a.msg.ToolCalls = append(a.msg.ToolCalls, call)

	a.propose(call)
}

func (a *Assembler) endTool(ev types.StreamEvent) {
	if call := a.tracker.Finish(ev.ToolID, ev.Result); call == nil {
		slog.Debug("tool_end for unknown tool ignored", "tool_id", ev.ToolID)
	}
}

// writeStyleTools are the actions whose arguments carry a file path and
// content worth surfacing before the result arrives.
var writeStyleTools = map[string]bool{
	"write_file":  true,
	"create_file": true,
}

// propose eagerly surfaces the proposed file of a write-style call.
// Best effort only: unparseable arguments are ignored.
func (a *Assembler) propose(call *types.ToolCall) {
	if a.proposer == nil || !writeStyleTools[call.Name] {
		return
	}
	proposal, ok := parseFileProposal(call.Arguments)
	if !ok {
		return
	}
	a.proposer.Propose(call.ID, proposal)
}
