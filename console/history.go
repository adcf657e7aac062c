package console

import "strings"

// History is the bounded, deduplicated command history with a recall cursor.
// The cursor is an offset from the end; -1 means not browsing.
type History struct {
	entries []string
	cursor  int
	max     int
}

// NewHistory returns an empty history capped at max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 1
	}
	return &History{cursor: -1, max: max}
}

// Submit records a command for dispatch. The text is trimmed; empty input is a
// no-op. A resubmitted command moves to the newest position instead of
// appearing twice. The cursor resets to not-browsing.
func (h *History) Submit(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", false
	}
	for i, entry := range h.entries {
		if entry == trimmed {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, trimmed)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	h.cursor = -1
	return trimmed, true
}

// RecallPrevious moves one step further from the end, bounded at the oldest
// entry, and returns the command there. Empty history returns "".
func (h *History) RecallPrevious() string {
	if len(h.entries) == 0 {
		return ""
	}
	if h.cursor < len(h.entries)-1 {
		h.cursor++
	}
	return h.entries[len(h.entries)-1-h.cursor]
}

// RecallNext moves one step toward the end. At the boundary it returns an
// empty string (clearing the input) rather than repeating the newest entry.
func (h *History) RecallNext() string {
	if h.cursor < 0 {
		return ""
	}
	h.cursor--
	if h.cursor < 0 {
		return ""
	}
	return h.entries[len(h.entries)-1-h.cursor]
}

// Len returns the number of stored commands.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the stored commands, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.entries...)
}
