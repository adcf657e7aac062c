package containerd

import (
	"bytes"
	"io"
	"strings"
	"sync"
)

const defaultTailBytes = 256 * 1024

// logCapture holds the live IO state for one attached container: line-splitting
// writers for stdout/stderr, a shared tail ring, and the stdin write end.
type logCapture struct {
	ring   *ringBuffer
	stdout *lineWriter
	stderr *lineWriter

	mu       sync.Mutex
	stdin    io.WriteCloser
	attached bool
}

func newLogCapture(size int, emit func(string)) *logCapture {
	if size <= 0 {
		size = defaultTailBytes
	}
	ring := newRingBuffer(size)
	sink := func(line string) {
		_, _ = ring.Write([]byte(line + "\n"))
		emit(line)
	}
	return &logCapture{
		ring:   ring,
		stdout: &lineWriter{emit: sink},
		stderr: &lineWriter{emit: sink},
	}
}

func (c *logCapture) setStdin(w io.WriteCloser) {
	c.mu.Lock()
	c.stdin = w
	c.attached = true
	c.mu.Unlock()
}

func (c *logCapture) isAttached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

func (c *logCapture) write(data []byte) error {
	c.mu.Lock()
	stdin := c.stdin
	c.mu.Unlock()
	if stdin == nil {
		return errNoStdin
	}
	_, err := stdin.Write(data)
	return err
}

func (c *logCapture) release() {
	c.mu.Lock()
	stdin := c.stdin
	c.stdin = nil
	c.attached = false
	c.mu.Unlock()
	if stdin != nil {
		_ = stdin.Close()
	}
	c.stdout.Flush()
	c.stderr.Flush()
}

func (c *logCapture) tail(limit int) []string {
	return tailLines(c.ring.Snapshot(), limit)
}

// lineWriter splits a byte stream into lines and hands each complete line to
// emit. Carriage returns at line ends are dropped.
type lineWriter struct {
	mu   sync.Mutex
	rest []byte
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rest = append(w.rest, p...)
	for {
		idx := bytes.IndexByte(w.rest, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(w.rest[:idx]), "\r")
		w.rest = w.rest[idx+1:]
		w.emit(line)
	}
	return len(p), nil
}

// Flush emits any buffered partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.rest) == 0 {
		return
	}
	line := strings.TrimRight(string(w.rest), "\r")
	w.rest = nil
	if line != "" {
		w.emit(line)
	}
}

func tailLines(data []byte, limit int) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}

type ringBuffer struct {
	mu     sync.Mutex
	buf    []byte
	size   int
	start  int
	length int
}

func newRingBuffer(size int) *ringBuffer {
	if size < 0 {
		size = 0
	}
	return &ringBuffer{size: size}
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	if r.size == 0 {
		return len(p), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.buf == nil {
		r.buf = make([]byte, r.size)
	}
	if len(p) >= r.size {
		copy(r.buf, p[len(p)-r.size:])
		r.start = 0
		r.length = r.size
		return len(p), nil
	}
	for _, b := range p {
		if r.length < r.size {
			idx := (r.start + r.length) % r.size
			r.buf[idx] = b
			r.length++
		} else {
			r.buf[r.start] = b
			r.start = (r.start + 1) % r.size
		}
	}
	return len(p), nil
}

func (r *ringBuffer) Snapshot() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.length == 0 {
		return nil
	}
	out := make([]byte, r.length)
	if r.start+r.length <= r.size {
		copy(out, r.buf[r.start:r.start+r.length])
		return out
	}
	n := r.size - r.start
	copy(out, r.buf[r.start:])
	copy(out[n:], r.buf[:r.length-n])
	return out
}
