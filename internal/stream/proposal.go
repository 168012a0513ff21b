// internal/stream/proposal.go
package stream

import (
	"encoding/json"

	"github.com/terryso/proxycast/internal/types"
)

// parseFileProposal extracts path and content from write-style tool
// arguments. Returns false when the arguments are not parseable or the
// path is missing.
func parseFileProposal(args json.RawMessage) (types.FileProposal, bool) {
	if len(args) == 0 {
		return types.FileProposal{}, false
	}
	var proposal types.FileProposal
	if err := json.Unmarshal(args, &proposal); err != nil {
		return types.FileProposal{}, false
	}
	if proposal.Path == "" {
		return types.FileProposal{}, false
	}
	return proposal, true
}
