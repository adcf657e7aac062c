// Package console implements the live console session engine: it ingests a
// stream of raw text lines from a supervised game server process, renders them
// with SGR fidelity or severity heuristics, keeps the viewport stable under
// concurrent appends, navigates command history, and watches the stream for an
// embedded device-code authentication handshake.
package console

import (
	"strings"

	"github.com/serverwave/serverwave/schema"
)

const sgrIntro = "\x1b["

// ContainsSGR is the cheap presence test selecting the interpreter path.
func ContainsSGR(line string) bool {
	return strings.Contains(line, sgrIntro)
}

// sgrState is the active style while walking a line. Style never leaks across
// lines; every line starts from the zero state.
type sgrState struct {
	fg        schema.ColorToken
	bg        schema.ColorToken
	bold      bool
	dim       bool
	italic    bool
	underline bool
}

func (s sgrState) segment(text string) schema.StyledSegment {
	return schema.StyledSegment{
		Text:       text,
		Foreground: s.fg,
		Background: s.bg,
		Bold:       s.bold,
		Dim:        s.dim,
		Italic:     s.italic,
		Underline:  s.underline,
	}
}

var standardColors = [8]schema.ColorToken{
	schema.ColorBlack, schema.ColorRed, schema.ColorGreen, schema.ColorYellow,
	schema.ColorBlue, schema.ColorMagenta, schema.ColorCyan, schema.ColorWhite,
}

var brightColors = [8]schema.ColorToken{
	schema.ColorBrightBlack, schema.ColorBrightRed, schema.ColorBrightGreen, schema.ColorBrightYellow,
	schema.ColorBrightBlue, schema.ColorBrightMagenta, schema.ColorBrightCyan, schema.ColorBrightWhite,
}

func (s *sgrState) apply(code int) {
	switch {
	case code == 0:
		*s = sgrState{}
	case code == 1:
		s.bold = true
	case code == 2:
		s.dim = true
	case code == 3:
		s.italic = true
	case code == 4:
		s.underline = true
	case code == 22:
		s.bold = false
		s.dim = false
	case code == 23:
		s.italic = false
	case code == 24:
		s.underline = false
	case code >= 30 && code <= 37:
		s.fg = standardColors[code-30]
	case code >= 90 && code <= 97:
		s.fg = brightColors[code-90]
	case code >= 40 && code <= 47:
		s.bg = standardColors[code-40]
	}
	// Unrecognized codes are ignored without error.
}

// ParseSGR splits a raw line into styled runs. Concatenating the segment texts
// reproduces the line with every well-formed ESC[...m marker removed. A marker
// with an empty code list acts as a reset; a marker missing its terminating
// 'm' stays in the output as literal text.
func ParseSGR(line string) []schema.StyledSegment {
	var (
		segments []schema.StyledSegment
		state    sgrState
		run      strings.Builder
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		segments = append(segments, state.segment(run.String()))
		run.Reset()
	}

	for i := 0; i < len(line); {
		if !strings.HasPrefix(line[i:], sgrIntro) {
			run.WriteByte(line[i])
			i++
			continue
		}
		codes, end, ok := parseMarker(line, i+len(sgrIntro))
		if !ok {
			// Malformed marker: keep the scanned bytes as literal text.
			run.WriteString(line[i:end])
			i = end
			continue
		}
		flush()
		if len(codes) == 0 {
			state.apply(0)
		}
		for _, code := range codes {
			state.apply(code)
		}
		i = end
	}
	flush()
	return segments
}

// parseMarker scans ';'-separated decimal codes starting at pos and returns
// the codes, the index just past the consumed bytes, and whether a terminating
// 'm' was found. On failure end points at the first byte that broke the parse.
func parseMarker(line string, pos int) (codes []int, end int, ok bool) {
	value := 0
	haveDigit := false
	for i := pos; i < len(line); i++ {
		c := line[i]
		switch {
		case c >= '0' && c <= '9':
			value = value*10 + int(c-'0')
			haveDigit = true
		case c == ';':
			codes = append(codes, value)
			value = 0
			haveDigit = false
		case c == 'm':
			if haveDigit || len(codes) > 0 {
				codes = append(codes, value)
			}
			return codes, i + 1, true
		default:
			return nil, i, false
		}
	}
	return nil, len(line), false
}

// StripSGR removes well-formed SGR markers from a line. Used by the
// device-code watcher before pattern matching.
func StripSGR(line string) string {
	if !ContainsSGR(line) {
		return line
	}
	segments := ParseSGR(line)
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}
