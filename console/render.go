package console

import "github.com/serverwave/serverwave/schema"

// RenderLine decides, once per line, how a raw line is presented: lines with
// SGR markers become styled segment runs, plain lines get a severity label.
// The two paths are mutually exclusive. Safe to re-run idempotently; the
// session caches the result per buffer index.
func RenderLine(raw string) schema.RenderedLine {
	if ContainsSGR(raw) {
		return schema.RenderedLine{
			Kind:     schema.LineStyled,
			Segments: ParseSGR(raw),
		}
	}
	return schema.RenderedLine{
		Kind:     schema.LineClassified,
		Severity: Classify(raw),
		Echo:     IsEcho(raw),
	}
}
