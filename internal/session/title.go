// internal/session/title.go
package session

import "strings"

const maxTitleRunes = 40

// DeriveTitle produces a topic title from the first user message: the
// first line, trimmed on a rune boundary. Titles are derived, never
// user-set.
func DeriveTitle(text string) string {
	title := strings.TrimSpace(text)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes]) + "…"
	}
	return title
}
