package schema

import "testing"

func TestValidateServerID(t *testing.T) {
	valid := []ServerID{"a", "srv-01", "hytale.eu_2"}
	for _, id := range valid {
		if err := ValidateServerID(id); err != nil {
			t.Fatalf("expected %q to be valid, got %v", id, err)
		}
	}
	invalid := []ServerID{"", " srv", "srv ", "SRV", "srv/1", "srv 1"}
	for _, id := range invalid {
		if err := ValidateServerID(id); err == nil {
			t.Fatalf("expected %q to be invalid", id)
		}
	}
}

func TestParseServerStatus(t *testing.T) {
	cases := map[string]ServerStatus{
		"running":    StatusRunning,
		" Stopped ":  StatusStopped,
		"INSTALLING": StatusInstalling,
		"starting":   StatusStarting,
		"stopping":   StatusStopping,
		"error":      StatusError,
		"bogus":      StatusError,
		"":           StatusError,
	}
	for in, want := range cases {
		if got := ParseServerStatus(in); got != want {
			t.Fatalf("ParseServerStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := []ServerStatus{StatusStopped, StatusError}
	for _, st := range terminal {
		if !st.IsTerminal() {
			t.Fatalf("expected %q to be terminal", st)
		}
	}
	live := []ServerStatus{StatusStarting, StatusInstalling, StatusRunning, StatusStopping}
	for _, st := range live {
		if st.IsTerminal() {
			t.Fatalf("expected %q to be non-terminal", st)
		}
	}
}
