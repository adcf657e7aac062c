package schema

import "testing"

func TestNewSessionIDUnique(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()
	if a == "" || b == "" {
		t.Fatalf("expected non-empty session ids, got %q and %q", a, b)
	}
	if a == b {
		t.Fatalf("expected distinct session ids, got %q twice", a)
	}
}
