// internal/usage/meter.go

// Package usage estimates how much model context the live transcript
// occupies, so the display layer can show a usage figure without asking
// the backend.
package usage

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/terryso/proxycast/internal/types"
)

// Meter counts tokens with the tokenizer matching the selected model.
type Meter struct {
	tokenizer *tiktoken.Tiktoken
}

// NewMeter creates a Meter for the given model name.
func NewMeter(model string) (*Meter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Fallback to cl100k_base for unknown models
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Meter{tokenizer: enc}, nil
}

// CountText returns the token count for a string.
func (m *Meter) CountText(text string) int {
	return len(m.tokenizer.Encode(text, nil, nil))
}

// EstimateTranscript returns the approximate token footprint of the
// transcript: message text plus tool names, arguments, and outputs.
func (m *Meter) EstimateTranscript(messages []*types.Message) int {
	total := 0
	for _, msg := range messages {
		total += m.CountText(msg.Content)
		for _, call := range msg.ToolCalls {
			total += m.CountText(call.Name)
			total += m.CountText(string(call.Arguments))
			if call.Result != nil {
				total += m.CountText(call.Result.Output)
			}
		}
	}
	return total
}
