package console

import (
	"testing"

	"github.com/serverwave/serverwave/schema"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		line string
		want schema.SeverityLabel
	}{
		{"[12:00:01] [Server thread/INFO]: Done", schema.SeverityNone},
		{"[ERROR] failed to bind port", schema.SeverityError},
		{"Caught IOException while reading region", schema.SeverityError},
		{"error: no such file", schema.SeverityError},
		{"An ErRoR occurred", schema.SeverityError},
		{"[WARN] skipping corrupted chunk", schema.SeverityWarning},
		{"warning: low memory", schema.SeverityWarning},
		{"warn high tick time", schema.SeverityWarning},
		{"forewarned is forearmed", schema.SeverityNone},
		{"[DEBUG] ticking entities", schema.SeverityDebug},
		{"debug info follows", schema.SeverityDebug},
		{"debugging is not a standalone word", schema.SeverityNone},
		{"", schema.SeverityNone},
	}
	for _, tc := range cases {
		if got := Classify(tc.line); got != tc.want {
			t.Fatalf("Classify(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestErrorOutranksWarning(t *testing.T) {
	if got := Classify("[WARN] error while saving"); got != schema.SeverityError {
		t.Fatalf("error must take priority, got %q", got)
	}
}

func TestIsEcho(t *testing.T) {
	if !IsEcho("> say hello") {
		t.Fatalf("expected echo prefix to match")
	}
	if IsEcho(">no space") || IsEcho(" > indented") {
		t.Fatalf("echo prefix must be exactly the first two characters")
	}
}

func TestEchoLine(t *testing.T) {
	if got := EchoLine("stop"); got != "> stop" {
		t.Fatalf("unexpected echo line %q", got)
	}
}

func TestEchoOverridesSeverity(t *testing.T) {
	rendered := RenderLine("> error on purpose")
	if rendered.Kind != schema.LineClassified || !rendered.Echo {
		t.Fatalf("expected classified echo line, got %+v", rendered)
	}
}
