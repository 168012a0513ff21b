// Package state provides the persistence ports: a durable preference
// store, an ephemeral per-run store, and a best-effort event journal.
package state

import "github.com/terryso/proxycast/internal/types"

// Compile-time interface compliance checks.
var _ types.DurableStore = (*PrefStore)(nil)
var _ types.EphemeralStore = (*RunStore)(nil)
