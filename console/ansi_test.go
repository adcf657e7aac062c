package console

import (
	"strings"
	"testing"

	"github.com/serverwave/serverwave/schema"
)

func concatSegments(segments []schema.StyledSegment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

func TestParseSGRRedThenDefault(t *testing.T) {
	segments := ParseSGR("\x1b[31merror\x1b[0m ok")
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segments), segments)
	}
	if segments[0].Text != "error" || segments[0].Foreground != schema.ColorRed {
		t.Fatalf("unexpected first segment: %+v", segments[0])
	}
	if segments[1].Text != " ok" || !segments[1].IsDefault() {
		t.Fatalf("unexpected second segment: %+v", segments[1])
	}
}

func TestParseSGRConcatStripsMarkers(t *testing.T) {
	lines := []string{
		"\x1b[1;32mready\x1b[0m",
		"no markers at all",
		"\x1b[31ma\x1b[42mb\x1b[0mc",
		"\x1b[mreset shorthand",
		"tail style \x1b[4munderlined",
		"\x1b[90;47mbright on white\x1b[39m",
	}
	strip := func(line string) string {
		var b strings.Builder
		for i := 0; i < len(line); {
			if strings.HasPrefix(line[i:], sgrIntro) {
				if _, end, ok := parseMarker(line, i+len(sgrIntro)); ok {
					i = end
					continue
				}
			}
			b.WriteByte(line[i])
			i++
		}
		return b.String()
	}
	for _, line := range lines {
		got := concatSegments(ParseSGR(line))
		if want := strip(line); got != want {
			t.Fatalf("concat mismatch for %q: got %q, want %q", line, got, want)
		}
	}
}

func TestParseSGRResetClearsEverything(t *testing.T) {
	segments := ParseSGR("\x1b[1;2;3;4;35;41mx\x1b[0my")
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	first := segments[0]
	if !first.Bold || !first.Dim || !first.Italic || !first.Underline ||
		first.Foreground != schema.ColorMagenta || first.Background != schema.ColorRed {
		t.Fatalf("unexpected styled segment: %+v", first)
	}
	if !segments[1].IsDefault() {
		t.Fatalf("expected default segment after reset, got %+v", segments[1])
	}
}

func TestParseSGRPartialClears(t *testing.T) {
	segments := ParseSGR("\x1b[1;2;3;4ma\x1b[22mb\x1b[23mc\x1b[24md")
	if len(segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(segments))
	}
	b := segments[1]
	if b.Bold || b.Dim || !b.Italic || !b.Underline {
		t.Fatalf("code 22 should clear bold and dim only: %+v", b)
	}
	c := segments[2]
	if c.Italic || !c.Underline {
		t.Fatalf("code 23 should clear italic only: %+v", c)
	}
	if segments[3].Underline {
		t.Fatalf("code 24 should clear underline: %+v", segments[3])
	}
}

func TestParseSGRForegroundReplaces(t *testing.T) {
	segments := ParseSGR("\x1b[31m\x1b[34mblue")
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].Foreground != schema.ColorBlue {
		t.Fatalf("expected later foreground to replace, got %+v", segments[0])
	}
}

func TestParseSGRBrightColors(t *testing.T) {
	segments := ParseSGR("\x1b[96mcyanish")
	if segments[0].Foreground != schema.ColorBrightCyan {
		t.Fatalf("expected bright cyan, got %+v", segments[0])
	}
}

func TestParseSGRUnknownCodesIgnored(t *testing.T) {
	segments := ParseSGR("\x1b[7;38;99mtext")
	if len(segments) != 1 || !segments[0].IsDefault() {
		t.Fatalf("unknown codes must be ignored: %+v", segments)
	}
	if segments[0].Text != "text" {
		t.Fatalf("unexpected text: %q", segments[0].Text)
	}
}

func TestParseSGRMalformedMarkerIsLiteral(t *testing.T) {
	segments := ParseSGR("before \x1b[31x after")
	got := concatSegments(segments)
	if got != "before \x1b[31x after" {
		t.Fatalf("malformed marker must stay literal, got %q", got)
	}
}

func TestParseSGRMarkerAtEndOfLine(t *testing.T) {
	segments := ParseSGR("trailing \x1b[31")
	if got := concatSegments(segments); got != "trailing \x1b[31" {
		t.Fatalf("unterminated marker must stay literal, got %q", got)
	}
}

func TestContainsSGR(t *testing.T) {
	if !ContainsSGR("\x1b[0m") {
		t.Fatalf("expected marker to be detected")
	}
	if ContainsSGR("plain text") {
		t.Fatalf("expected no marker")
	}
}

func TestStripSGR(t *testing.T) {
	if got := StripSGR("\x1b[32mok\x1b[0m done"); got != "ok done" {
		t.Fatalf("unexpected strip result %q", got)
	}
	if got := StripSGR("untouched"); got != "untouched" {
		t.Fatalf("plain line must pass through, got %q", got)
	}
}
