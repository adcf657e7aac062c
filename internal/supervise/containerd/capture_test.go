package containerd

import (
	"reflect"
	"strings"
	"testing"
)

func TestLineWriterSplitsLines(t *testing.T) {
	var got []string
	w := &lineWriter{emit: func(line string) { got = append(got, line) }}

	if _, err := w.Write([]byte("first line\nsecond ")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := w.Write([]byte("half\r\nthird\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := []string{"first line", "second half", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestLineWriterFlushEmitsPartial(t *testing.T) {
	var got []string
	w := &lineWriter{emit: func(line string) { got = append(got, line) }}
	if _, err := w.Write([]byte("no newline yet")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no lines before flush, got %v", got)
	}
	w.Flush()
	if len(got) != 1 || got[0] != "no newline yet" {
		t.Fatalf("expected flushed partial line, got %v", got)
	}
	w.Flush()
	if len(got) != 1 {
		t.Fatalf("expected flush to be idempotent, got %v", got)
	}
}

func TestLogCaptureFeedsTailAndEmit(t *testing.T) {
	var emitted []string
	capture := newLogCapture(1024, func(line string) { emitted = append(emitted, line) })
	if _, err := capture.stdout.Write([]byte("out 1\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := capture.stderr.Write([]byte("err 1\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !reflect.DeepEqual(emitted, []string{"out 1", "err 1"}) {
		t.Fatalf("unexpected emits: %v", emitted)
	}
	tail := capture.tail(10)
	if !reflect.DeepEqual(tail, []string{"out 1", "err 1"}) {
		t.Fatalf("unexpected tail: %v", tail)
	}
	if tail := capture.tail(1); !reflect.DeepEqual(tail, []string{"err 1"}) {
		t.Fatalf("expected bounded tail, got %v", tail)
	}
}

func TestRingBufferDropsOldest(t *testing.T) {
	ring := newRingBuffer(8)
	if _, err := ring.Write([]byte("abcd")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ring.Write([]byte("efghij")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := string(ring.Snapshot()); got != "cdefghij" {
		t.Fatalf("expected wrapped snapshot, got %q", got)
	}
	if _, err := ring.Write([]byte("0123456789")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := string(ring.Snapshot()); got != "23456789" {
		t.Fatalf("expected oversized write to keep newest bytes, got %q", got)
	}
}

func TestTailLines(t *testing.T) {
	data := []byte(strings.Join([]string{"a", "b", "c", "d"}, "\n") + "\n")
	if got := tailLines(data, 2); !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Fatalf("expected last two lines, got %v", got)
	}
	if got := tailLines(data, 10); len(got) != 4 {
		t.Fatalf("expected all lines, got %v", got)
	}
	if got := tailLines(nil, 5); got != nil {
		t.Fatalf("expected nil for empty data, got %v", got)
	}
}
