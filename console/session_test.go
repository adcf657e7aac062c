package console

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/serverwave/serverwave/schema"
)

type fakeSupervisor struct {
	recent    []string
	recentErr error
	status    schema.ServerStatus
	statusErr error

	events    chan schema.LineEvent
	subErr    error
	cancels   int
	submitted []string
	submitErr error
}

func (f *fakeSupervisor) FetchRecentLines(ctx context.Context, serverID schema.ServerID, limit int) ([]string, error) {
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if limit > 0 && len(f.recent) > limit {
		return f.recent[len(f.recent)-limit:], nil
	}
	return f.recent, nil
}

func (f *fakeSupervisor) SubscribeLines(ctx context.Context, serverID schema.ServerID) (<-chan schema.LineEvent, func(), error) {
	if f.subErr != nil {
		return nil, nil, f.subErr
	}
	if f.events == nil {
		f.events = make(chan schema.LineEvent, 16)
	}
	return f.events, func() { f.cancels++ }, nil
}

func (f *fakeSupervisor) SubmitCommand(ctx context.Context, serverID schema.ServerID, command string) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, command)
	return nil
}

func (f *fakeSupervisor) Status(ctx context.Context, serverID schema.ServerID) (schema.ServerStatus, error) {
	if f.statusErr != nil {
		return schema.StatusError, f.statusErr
	}
	return f.status, nil
}

func newTestSession(t *testing.T, sup *fakeSupervisor) *Session {
	t.Helper()
	if sup.status == "" {
		sup.status = schema.StatusRunning
	}
	s, err := NewSession("srv-1", schema.ConsoleConfig{}, sup, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func attach(t *testing.T, s *Session) {
	t.Helper()
	if _, err := s.Attach(context.Background()); err != nil {
		t.Fatalf("attach: %v", err)
	}
}

func TestSessionAttachSeedsBuffer(t *testing.T) {
	sup := &fakeSupervisor{recent: []string{"one", "two", "three"}}
	s := newTestSession(t, sup)
	attach(t, s)
	if s.Len() != 3 {
		t.Fatalf("expected 3 seeded lines, got %d", s.Len())
	}
	if got := len(s.Rendered()); got != 3 {
		t.Fatalf("render cache must match buffer, got %d", got)
	}
	if s.Status() != schema.StatusRunning {
		t.Fatalf("expected running status, got %q", s.Status())
	}
}

func TestSessionAttachSurvivesFetchFailure(t *testing.T) {
	sup := &fakeSupervisor{recentErr: errors.New("boom")}
	s := newTestSession(t, sup)
	attach(t, s)
	if s.Len() != 0 {
		t.Fatalf("expected empty buffer after failed fetch, got %d", s.Len())
	}
	if !s.Attached() {
		t.Fatalf("fetch failure must not prevent attach")
	}
}

func TestSessionReattachCancelsPriorSubscription(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	attach(t, s)
	if sup.cancels != 1 {
		t.Fatalf("expected prior subscription cancelled once, got %d", sup.cancels)
	}
}

func TestSessionHandleLineAppendsAndJumps(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	var last Update
	for i := 0; i < 50; i++ {
		last = s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: fmt.Sprintf("line %d", i)})
		if !last.Jump {
			t.Fatalf("append %d while pinned must jump", i)
		}
	}
	if last.Line.Index != 49 {
		t.Fatalf("viewport target must be the final line, got index %d", last.Line.Index)
	}
}

func TestSessionUnpinnedAppendsLeaveViewport(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "one"})
	s.ObserveScroll(0)
	s.ObserveScroll(400)
	if s.Pinned() {
		t.Fatalf("expected unpinned after scroll away")
	}
	up := s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "two"})
	if up.Jump {
		t.Fatalf("append must not move an unpinned viewport")
	}
	s.Repin()
	if up := s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "three"}); !up.Jump {
		t.Fatalf("append after repin must jump")
	}
}

func TestSessionDiscardsForeignAndStaleEvents(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	if up := s.HandleLine(schema.LineEvent{ServerID: "other", Line: "x"}); !up.Discarded {
		t.Fatalf("foreign events must be discarded")
	}
	s.Detach()
	if up := s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "late"}); !up.Discarded {
		t.Fatalf("late events after detach must be discarded")
	}
	if s.Len() != 0 {
		t.Fatalf("discarded events must not mutate the buffer")
	}
	if sup.cancels != 1 {
		t.Fatalf("detach must cancel the subscription")
	}
}

func TestSessionSubmitCommandEchoAndDispatch(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	if err := s.SubmitCommand(context.Background(), "  say hi  "); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(sup.submitted) != 1 || sup.submitted[0] != "say hi" {
		t.Fatalf("unexpected dispatch: %v", sup.submitted)
	}
	lines := s.Lines()
	if len(lines) != 1 || lines[0].Raw != "> say hi" {
		t.Fatalf("expected local echo, got %+v", lines)
	}
	rendered := s.Rendered()
	if !rendered[0].Echo {
		t.Fatalf("echo line must carry the echo hint: %+v", rendered[0])
	}
}

func TestSessionSubmitCommandFailureIsTransientNotice(t *testing.T) {
	sup := &fakeSupervisor{submitErr: errors.New("pipe closed")}
	s := newTestSession(t, sup)
	attach(t, s)
	if err := s.SubmitCommand(context.Background(), "stop"); err != nil {
		t.Fatalf("dispatch failure must not be fatal: %v", err)
	}
	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected echo plus notice, got %d lines", len(lines))
	}
	if lines[1].Raw != "[Serverwave] command failed: pipe closed" {
		t.Fatalf("unexpected notice line %q", lines[1].Raw)
	}
}

func TestSessionSubmitCommandWhenDetached(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	if err := s.SubmitCommand(context.Background(), "stop"); !errors.Is(err, schema.ErrSessionDetached) {
		t.Fatalf("expected ErrSessionDetached, got %v", err)
	}
}

func TestSessionEmptyCommandIsNoop(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	if err := s.SubmitCommand(context.Background(), "   "); err != nil {
		t.Fatalf("empty command: %v", err)
	}
	if s.Len() != 0 || len(sup.submitted) != 0 {
		t.Fatalf("empty command must not echo or dispatch")
	}
}

func TestSessionStopClearsBufferAndResetsWatcher(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: verifyLine})
	if s.Detection() == nil {
		t.Fatalf("expected device-code detection")
	}
	s.DismissDetection()
	s.HandleStatus(schema.StatusEvent{ServerID: "srv-1", Status: schema.StatusStopped})
	if s.Len() != 0 {
		t.Fatalf("running to stopped must clear the buffer, got %d lines", s.Len())
	}
	if len(s.Rendered()) != 0 {
		t.Fatalf("render cache must clear with the buffer")
	}
	if s.watcher.Dismissed() {
		t.Fatalf("terminal transition must reset the dismissed flag")
	}
	s.HandleStatus(schema.StatusEvent{ServerID: "srv-1", Status: schema.StatusRunning})
	if up := s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: verifyLine}); !up.Detected {
		t.Fatalf("expected re-detection on the next run")
	}
}

func TestSessionIgnoresForeignStatus(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "keep me"})
	s.HandleStatus(schema.StatusEvent{ServerID: "other", Status: schema.StatusStopped})
	if s.Len() != 1 || s.Status() != schema.StatusRunning {
		t.Fatalf("foreign status must be ignored")
	}
}

func TestSessionExplicitClear(t *testing.T) {
	sup := &fakeSupervisor{}
	s := newTestSession(t, sup)
	attach(t, s)
	s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "one"})
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected cleared buffer")
	}
	if up := s.HandleLine(schema.LineEvent{ServerID: "srv-1", Line: "fresh"}); up.Line.Index != 0 {
		t.Fatalf("clear must reset the index counter, got %d", up.Line.Index)
	}
}

func TestNewSessionValidation(t *testing.T) {
	if _, err := NewSession("BAD ID", schema.ConsoleConfig{}, &fakeSupervisor{}, nil); err == nil {
		t.Fatalf("expected invalid server id error")
	}
	if _, err := NewSession("srv-1", schema.ConsoleConfig{}, nil, nil); !errors.Is(err, schema.ErrSupervisorUnavailable) {
		t.Fatalf("expected ErrSupervisorUnavailable, got %v", err)
	}
}
