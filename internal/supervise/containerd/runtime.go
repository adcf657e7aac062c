// Package containerd implements the console supervisor on top of a containerd
// endpoint. Each game server runs as one containerd task; the supervisor
// attaches to the task's IO, splits output into lines for the event bus, keeps
// a bounded tail for history fetches, and relays commands over stdin.
package containerd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/namespaces"
	"github.com/containerd/errdefs"
	"pkt.systems/pslog"

	"github.com/serverwave/serverwave/internal/eventbus"
	"github.com/serverwave/serverwave/schema"
)

const (
	labelManaged = "serverwave.managed"
	labelPhase   = "serverwave.phase"
	labelGame    = "serverwave.game"

	phaseInstalling = "installing"
)

var errNoStdin = errors.New("stdin not attached")

// Config configures the containerd supervisor.
type Config struct {
	Address   string
	Namespace string
	// TailBytes bounds the per-server output retained for history fetches.
	TailBytes int
}

// Supervisor implements console.Supervisor against containerd.
type Supervisor struct {
	client    *containerd.Client
	namespace string
	tailBytes int
	bus       *eventbus.Bus

	mu       sync.Mutex
	captures map[schema.ServerID]*logCapture
}

// New connects to containerd, trying fallback socket paths when the configured
// address does not answer.
func New(ctx context.Context, cfg Config, bus *eventbus.Bus) (*Supervisor, error) {
	if bus == nil {
		return nil, errors.New("event bus is required")
	}
	log := pslog.Ctx(ctx).With("runtime", "containerd")
	addresses := candidateAddresses(cfg.Address, "containerd")
	var lastErr error
	for _, addr := range addresses {
		log.Debug("containerd connect attempt", "address", addr)
		client, err := containerd.New(addr)
		if err == nil {
			namespace := cfg.Namespace
			if namespace == "" {
				namespace = "serverwave"
			}
			log.Info("containerd supervisor ready", "address", addr, "namespace", namespace)
			return &Supervisor{
				client:    client,
				namespace: namespace,
				tailBytes: cfg.TailBytes,
				bus:       bus,
				captures:  make(map[schema.ServerID]*logCapture),
			}, nil
		}
		log.Warn("containerd connect failed", "address", addr, "err", err)
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("containerd address not configured")
	}
	log.Warn("containerd supervisor unavailable", "err", lastErr)
	return nil, fmt.Errorf("%w: %v", schema.ErrSupervisorUnavailable, lastErr)
}

// Close releases all attached stdin pipes and the containerd client.
func (s *Supervisor) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	captures := make([]*logCapture, 0, len(s.captures))
	for _, c := range s.captures {
		captures = append(captures, c)
	}
	s.mu.Unlock()
	for _, c := range captures {
		c.release()
	}
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Status reports the lifecycle state of the server's task. A container with no
// task is stopped; a running task labeled with an install phase is installing.
func (s *Supervisor) Status(ctx context.Context, serverID schema.ServerID) (schema.ServerStatus, error) {
	ctx = namespaces.WithNamespace(ctx, s.namespace)
	container, err := s.client.LoadContainer(ctx, string(serverID))
	if err != nil {
		if errdefs.IsNotFound(err) {
			return schema.StatusError, fmt.Errorf("%w: %s", schema.ErrServerNotFound, serverID)
		}
		return schema.StatusError, err
	}
	info, err := container.Info(ctx)
	if err != nil {
		return schema.StatusError, err
	}
	task, err := container.Task(ctx, nil)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return schema.StatusStopped, nil
		}
		return schema.StatusError, err
	}
	status, err := task.Status(ctx)
	if err != nil {
		return schema.StatusError, err
	}
	return mapTaskStatus(status.Status, info.Labels[labelPhase]), nil
}

// FetchRecentLines returns the bounded tail captured for the server, newest
// last. The supervisor attaches to the task on first use, so the tail only
// covers output since the first attach.
func (s *Supervisor) FetchRecentLines(ctx context.Context, serverID schema.ServerID, limit int) ([]string, error) {
	capture, err := s.attach(ctx, serverID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = schema.DefaultHistoryFetchLimit
	}
	return capture.tail(limit), nil
}

// SubscribeLines delivers the server's output lines until cancel is called.
func (s *Supervisor) SubscribeLines(ctx context.Context, serverID schema.ServerID) (<-chan schema.LineEvent, func(), error) {
	if _, err := s.attach(ctx, serverID); err != nil {
		return nil, nil, err
	}
	events, cancel := s.bus.Subscribe(serverID)
	out := make(chan schema.LineEvent, 256)
	go func() {
		defer close(out)
		for event := range events {
			if event.Type != eventbus.EventLine {
				continue
			}
			out <- event.Line
		}
	}()
	return out, cancel, nil
}

// SubscribeStatus delivers the server's lifecycle transitions until cancel is
// called. This is a supervisor extra beyond console.Supervisor; the front end
// uses it to drive session status handling.
func (s *Supervisor) SubscribeStatus(serverID schema.ServerID) (<-chan schema.StatusEvent, func()) {
	events, cancel := s.bus.Subscribe(serverID)
	out := make(chan schema.StatusEvent, 16)
	go func() {
		defer close(out)
		for event := range events {
			if event.Type != eventbus.EventStatus {
				continue
			}
			out <- event.Status
		}
	}()
	return out, cancel
}

// SubmitCommand writes one command line to the task's stdin.
func (s *Supervisor) SubmitCommand(ctx context.Context, serverID schema.ServerID, command string) error {
	if strings.TrimSpace(command) == "" {
		return schema.ErrEmptyCommand
	}
	capture, err := s.attach(ctx, serverID)
	if err != nil {
		return err
	}
	if err := capture.write([]byte(command + "\n")); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrSupervisorUnavailable, err)
	}
	return nil
}

// attach ensures the server's task IO is wired into this supervisor: stdout
// and stderr into the line capture, a pipe onto stdin for commands.
func (s *Supervisor) attach(ctx context.Context, serverID schema.ServerID) (*logCapture, error) {
	capture := s.ensureCapture(serverID)
	if capture.isAttached() {
		return capture, nil
	}

	log := pslog.Ctx(ctx).With("runtime", "containerd", "server", serverID)
	ctx = namespaces.WithNamespace(ctx, s.namespace)
	container, err := s.client.LoadContainer(ctx, string(serverID))
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", schema.ErrServerNotFound, serverID)
		}
		return nil, err
	}
	stdinR, stdinW := io.Pipe()
	task, err := container.Task(ctx, cio.NewAttach(cio.WithStreams(stdinR, capture.stdout, capture.stderr)))
	if err != nil {
		_ = stdinW.Close()
		if errdefs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: no task for %s", schema.ErrServerNotFound, serverID)
		}
		return nil, err
	}
	capture.setStdin(stdinW)
	log.Info("containerd task attached", "task", task.ID())
	s.watchExit(task, serverID, capture)
	return capture, nil
}

func (s *Supervisor) ensureCapture(serverID schema.ServerID) *logCapture {
	s.mu.Lock()
	defer s.mu.Unlock()
	capture, ok := s.captures[serverID]
	if !ok {
		capture = newLogCapture(s.tailBytes, func(line string) {
			s.bus.PublishLine(schema.LineEvent{ServerID: serverID, Line: line})
		})
		s.captures[serverID] = capture
	}
	return capture
}

// watchExit publishes a terminal status event when the task ends and releases
// the capture so a later attach starts clean.
func (s *Supervisor) watchExit(task containerd.Task, serverID schema.ServerID, capture *logCapture) {
	go func() {
		ctx := namespaces.WithNamespace(context.Background(), s.namespace)
		waitCh, err := task.Wait(ctx)
		if err != nil {
			return
		}
		exit, ok := <-waitCh
		if !ok {
			return
		}
		capture.release()
		status := schema.StatusStopped
		if code, _, err := exit.Result(); err != nil || code != 0 {
			status = schema.StatusError
		}
		s.bus.PublishStatus(schema.StatusEvent{ServerID: serverID, Status: status})
	}()
}

func mapTaskStatus(status containerd.ProcessStatus, phase string) schema.ServerStatus {
	switch status {
	case containerd.Created:
		return schema.StatusStarting
	case containerd.Running:
		if phase == phaseInstalling {
			return schema.StatusInstalling
		}
		return schema.StatusRunning
	case containerd.Pausing, containerd.Paused:
		return schema.StatusStopping
	case containerd.Stopped:
		return schema.StatusStopped
	default:
		return schema.StatusError
	}
}

func candidateAddresses(primary string, name string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(addr string) {
		addr = normalizeAddress(addr)
		if addr == "" {
			return
		}
		if _, ok := seen[addr]; ok {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}
	add(primary)

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		add(filepath.Join(runtimeDir, name, name+".sock"))
	}
	userRunDir := filepath.Join("/run", "user", fmt.Sprintf("%d", os.Getuid()))
	if userRunDir != runtimeDir {
		add(filepath.Join(userRunDir, name, name+".sock"))
	}
	add(filepath.Join("/run", name, name+".sock"))
	return out
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	if strings.HasPrefix(addr, "unix://") {
		addr = strings.TrimPrefix(addr, "unix://")
	}
	if strings.HasPrefix(addr, "unix:") {
		addr = strings.TrimPrefix(addr, "unix:")
	}
	return addr
}
