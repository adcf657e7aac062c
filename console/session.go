package console

import (
	"context"
	"fmt"

	"pkt.systems/pslog"

	"github.com/serverwave/serverwave/schema"
)

// noticePrefix marks lines synthesized by the tool itself rather than the
// server process.
const noticePrefix = "[Serverwave] "

// Update describes the effects of one ingested line so the owner's event loop
// can re-render without re-deciding anything.
type Update struct {
	Line     schema.LogLine
	Rendered schema.RenderedLine
	// Jump is true when the viewport must move to the newest line.
	Jump bool
	// Detected is true when this append latched a new device-code detection.
	Detected bool
	// Discarded is true when the event was stale or foreign and ignored.
	Discarded bool
}

// Session is the per-server console state: log buffer, per-line render cache,
// viewport controller, command history, and device-code watcher. All state is
// session-scoped and passed explicitly; nothing here is shared between
// sessions. Methods must be called from a single event loop.
type Session struct {
	id  schema.ServerID
	cfg schema.ConsoleConfig
	sup Supervisor
	log pslog.Logger

	status   schema.ServerStatus
	buf      *Buffer
	rendered []schema.RenderedLine
	view     *Viewport
	history  *History
	watcher  *DeviceCodeWatcher

	cancel   func()
	attached bool
}

// NewSession constructs a detached session for the given server.
func NewSession(id schema.ServerID, cfg schema.ConsoleConfig, sup Supervisor, logger pslog.Logger) (*Session, error) {
	if err := schema.ValidateServerID(id); err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, schema.ErrSupervisorUnavailable
	}
	normalized, err := schema.NormalizeConsoleConfig(cfg)
	if err != nil {
		return nil, err
	}
	watcher, err := NewDeviceCodeWatcher(normalized)
	if err != nil {
		return nil, err
	}
	// Callers pass a logger already annotated with the server (and session)
	// identifiers; only the nil fallback annotates here.
	if logger == nil {
		logger = pslog.Ctx(context.Background()).With("server", id)
	}
	return &Session{
		id:      id,
		cfg:     normalized,
		sup:     sup,
		log:     logger,
		status:  schema.StatusStopped,
		buf:     NewBuffer(),
		view:    NewViewport(normalized.ScrollTolerance),
		history: NewHistory(normalized.HistoryMax),
		watcher: watcher,
	}, nil
}

// Attach seeds the buffer from a bounded historical tail and subscribes to the
// live stream. Any prior subscription is cancelled first, so exactly one
// subscription exists per session. A failed fetch is logged and the session
// continues with an empty buffer.
func (s *Session) Attach(ctx context.Context) (<-chan schema.LineEvent, error) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	status, err := s.sup.Status(ctx, s.id)
	if err != nil {
		s.log.Warn("console status probe failed", "err", err)
	} else {
		s.status = status
	}

	lines, err := s.sup.FetchRecentLines(ctx, s.id, s.cfg.HistoryFetchLimit)
	if err != nil {
		s.log.Warn("console history fetch failed", "err", err)
	}
	for _, raw := range lines {
		s.ingest(raw)
	}
	s.watcher.Scan(s.buf.Tail(s.cfg.DeviceCodeWindow), s.status)

	ch, cancel, err := s.sup.SubscribeLines(ctx, s.id)
	if err != nil {
		s.log.Warn("console subscribe failed", "err", err)
		return nil, err
	}
	s.cancel = cancel
	s.attached = true
	s.log.Info("console attached", "seed_lines", len(lines), "status", s.status)
	return ch, nil
}

// Detach cancels the subscription. Late-arriving events for the session are
// discarded afterwards; no further mutation is permitted.
func (s *Session) Detach() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.attached {
		s.attached = false
		s.log.Info("console detached")
	}
}

// Attached reports whether the session has a live subscription.
func (s *Session) Attached() bool {
	return s.attached
}

// HandleLine ingests one streamed line. Events for other servers or for a
// since-detached session are discarded.
func (s *Session) HandleLine(ev schema.LineEvent) Update {
	if !s.attached || ev.ServerID != s.id {
		return Update{Discarded: true}
	}
	line, rendered := s.ingest(ev.Line)
	detected := s.watcher.Scan(s.buf.Tail(s.cfg.DeviceCodeWindow), s.status)
	return Update{
		Line:     line,
		Rendered: rendered,
		Jump:     s.view.OnAppend(s.buf.Len()),
		Detected: detected,
	}
}

func (s *Session) ingest(raw string) (schema.LogLine, schema.RenderedLine) {
	line := s.buf.Append(raw)
	rendered := RenderLine(raw)
	s.rendered = append(s.rendered, rendered)
	return line, rendered
}

// HandleStatus applies a lifecycle transition. Leaving running for a stopped
// state clears the buffer so a later run does not mix sessions; any terminal
// state resets the device-code watcher for re-detection on the next run.
func (s *Session) HandleStatus(ev schema.StatusEvent) {
	if ev.ServerID != s.id {
		return
	}
	prev := s.status
	s.status = ev.Status
	if ev.Status.IsTerminal() {
		s.watcher.Reset()
		if prev == schema.StatusRunning || prev == schema.StatusStopping {
			s.clearLines()
		}
		s.log.Debug("console terminal transition", "from", prev, "to", ev.Status)
	}
}

// SubmitCommand records the command in history, appends the local echo, and
// dispatches it fire-and-forget. A dispatch failure is surfaced as a transient
// notice line; the input is not re-queued.
func (s *Session) SubmitCommand(ctx context.Context, text string) error {
	if !s.attached {
		return schema.ErrSessionDetached
	}
	command, ok := s.history.Submit(text)
	if !ok {
		return nil
	}
	s.ingest(EchoLine(command))
	s.view.OnAppend(s.buf.Len())
	if err := s.sup.SubmitCommand(ctx, s.id, command); err != nil {
		s.log.Warn("console command dispatch failed", "err", err)
		s.ingest(noticePrefix + fmt.Sprintf("command failed: %v", err))
		return nil
	}
	s.log.Debug("console command sent", "command", command)
	return nil
}

// ObserveScroll forwards a manual scroll event to the viewport controller.
func (s *Session) ObserveScroll(offsetFromBottom int) {
	s.view.ObserveScroll(offsetFromBottom, s.buf.Len())
}

// Repin forces the viewport back to the bottom.
func (s *Session) Repin() {
	s.view.Repin(s.buf.Len())
}

// Pinned reports the viewport state.
func (s *Session) Pinned() bool {
	return s.view.Pinned()
}

// Clear empties the buffer and render cache on explicit user request.
func (s *Session) Clear() {
	s.clearLines()
	s.log.Debug("console cleared")
}

func (s *Session) clearLines() {
	s.buf.Clear()
	s.rendered = nil
}

// Lines returns the buffered lines in order.
func (s *Session) Lines() []schema.LogLine {
	return s.buf.Snapshot()
}

// Rendered returns the cached render decisions, parallel to Lines.
func (s *Session) Rendered() []schema.RenderedLine {
	out := make([]schema.RenderedLine, len(s.rendered))
	copy(out, s.rendered)
	return out
}

// Len returns the buffer length.
func (s *Session) Len() int {
	return s.buf.Len()
}

// Status returns the last known server status.
func (s *Session) Status() schema.ServerStatus {
	return s.status
}

// History exposes the command history navigator.
func (s *Session) History() *History {
	return s.history
}

// Detection returns the visible device-code detection, or nil.
func (s *Session) Detection() *schema.DeviceCode {
	return s.watcher.Detection()
}

// DismissDetection hides the active detection until the next terminal reset.
func (s *Session) DismissDetection() {
	s.watcher.Dismiss()
}

// ID returns the server this session observes.
func (s *Session) ID() schema.ServerID {
	return s.id
}
