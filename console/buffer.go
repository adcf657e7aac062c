package console

import "github.com/serverwave/serverwave/schema"

// Buffer is the ordered, append-only store of lines for one session. No line
// is ever removed individually and no maximum size is enforced here; bounding
// is a policy decision of the caller (the attach-time tail fetch is capped).
type Buffer struct {
	lines []schema.LogLine
	next  int
}

// NewBuffer returns an empty log buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds one line at the next index and returns the stored record.
func (b *Buffer) Append(raw string) schema.LogLine {
	line := schema.LogLine{Index: b.next, Raw: raw}
	b.lines = append(b.lines, line)
	b.next++
	return line
}

// Clear empties the buffer and resets the index counter to zero.
func (b *Buffer) Clear() {
	b.lines = nil
	b.next = 0
}

// Len returns the number of stored lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Snapshot returns the current ordered sequence for rendering.
func (b *Buffer) Snapshot() []schema.LogLine {
	out := make([]schema.LogLine, len(b.lines))
	copy(out, b.lines)
	return out
}

// Tail returns up to n of the newest lines, oldest first. Used by the
// device-code watcher to bound its scan window.
func (b *Buffer) Tail(n int) []schema.LogLine {
	if n <= 0 || len(b.lines) == 0 {
		return nil
	}
	start := len(b.lines) - n
	if start < 0 {
		start = 0
	}
	out := make([]schema.LogLine, len(b.lines)-start)
	copy(out, b.lines[start:])
	return out
}
