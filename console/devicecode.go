package console

import (
	"regexp"
	"strings"

	"github.com/serverwave/serverwave/schema"
)

// DeviceCodeWatcher scans the tail of the log stream for an authentication
// handshake: a provider verification URL carrying a user_code parameter. A
// detection latches until the session reaches a terminal state, so a busy
// stream cannot re-trigger the notification.
type DeviceCodeWatcher struct {
	pattern   *regexp.Regexp
	window    int
	detection *schema.DeviceCode
	dismissed bool
}

// NewDeviceCodeWatcher compiles the pattern from a normalized ConsoleConfig.
// The pattern's first capture group is the user code.
func NewDeviceCodeWatcher(cfg schema.ConsoleConfig) (*DeviceCodeWatcher, error) {
	re, err := regexp.Compile(cfg.DeviceCodePattern)
	if err != nil {
		return nil, err
	}
	return &DeviceCodeWatcher{pattern: re, window: cfg.DeviceCodeWindow}, nil
}

// Scan inspects up to the configured window of newest lines, newest first, and
// latches the first match. It is a no-op while a detection is active or
// dismissed, or when the session status is terminal. Reports whether a new
// detection was latched.
func (w *DeviceCodeWatcher) Scan(lines []schema.LogLine, status schema.ServerStatus) bool {
	if w.detection != nil || w.dismissed || status.IsTerminal() {
		return false
	}
	start := len(lines) - w.window
	if start < 0 {
		start = 0
	}
	for i := len(lines) - 1; i >= start; i-- {
		if dc, ok := w.match(lines[i].Raw); ok {
			w.detection = &dc
			return true
		}
	}
	return false
}

func (w *DeviceCodeWatcher) match(raw string) (schema.DeviceCode, bool) {
	cleaned := stripControl(StripSGR(raw))
	m := w.pattern.FindStringSubmatch(cleaned)
	if m == nil || len(m) < 2 || m[1] == "" {
		return schema.DeviceCode{}, false
	}
	return schema.DeviceCode{URL: m[0], Code: m[1]}, true
}

// Detection returns the active detection, or nil. A dismissed detection stays
// latched but hidden, so it cannot re-show until the next terminal-state reset.
func (w *DeviceCodeWatcher) Detection() *schema.DeviceCode {
	if w.detection == nil || w.dismissed {
		return nil
	}
	dc := *w.detection
	return &dc
}

// Dismiss hides the active detection without clearing the latch.
func (w *DeviceCodeWatcher) Dismiss() {
	w.dismissed = true
}

// Dismissed reports whether the user dismissed the current detection.
func (w *DeviceCodeWatcher) Dismissed() bool {
	return w.dismissed
}

// Reset clears the detection and the dismissed flag. Called when the session
// enters a terminal state so the next run can re-detect.
func (w *DeviceCodeWatcher) Reset() {
	w.detection = nil
	w.dismissed = false
}

// stripControl removes control characters left after escape stripping, so the
// pattern never matches across invisible boundaries.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
