// Package tui is the interactive console front end: a bubbletea program that
// owns one console session, drains its event channels in the update loop, and
// renders the buffer through a bubbles viewport.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/serverwave/serverwave/console"
	"github.com/serverwave/serverwave/schema"
)

// StatusSource is implemented by supervisors that publish lifecycle events.
type StatusSource interface {
	SubscribeStatus(serverID schema.ServerID) (<-chan schema.StatusEvent, func())
}

// Options configures the console program.
type Options struct {
	Context  context.Context
	Session  *console.Session
	Statuses StatusSource
	Logger   pslog.Logger
}

// Model is the root bubbletea state. All session mutation happens here, in
// the single update loop.
type Model struct {
	ctx      context.Context
	session  *console.Session
	statuses StatusSource
	log      pslog.Logger

	lines        <-chan schema.LineEvent
	statusCh     <-chan schema.StatusEvent
	cancelStatus func()

	viewport viewport.Model
	input    textinput.Model
	keys     keyMap
	styles   Styles

	width  int
	height int
	ready  bool
	err    error
}

// New constructs the console model around an existing session.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}

	input := textinput.New()
	input.Placeholder = "command"
	input.Prompt = "> "
	input.CharLimit = 512
	input.Focus()

	return Model{
		ctx:      ctx,
		session:  opts.Session,
		statuses: opts.Statuses,
		log:      logger,
		input:    input,
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
	}
}

type attachedMsg struct {
	lines <-chan schema.LineEvent
}

type attachErrMsg struct {
	err error
}

type lineMsg schema.LineEvent

type linesClosedMsg struct{}

type statusMsg schema.StatusEvent

type statusClosedMsg struct{}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		textinput.Blink,
		m.attachCmd(),
	}
	return tea.Batch(cmds...)
}

func (m Model) attachCmd() tea.Cmd {
	session := m.session
	ctx := m.ctx
	return func() tea.Msg {
		ch, err := session.Attach(ctx)
		if err != nil {
			return attachErrMsg{err: err}
		}
		return attachedMsg{lines: ch}
	}
}

func waitLine(ch <-chan schema.LineEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return linesClosedMsg{}
		}
		return lineMsg(event)
	}
}

func waitStatus(ch <-chan schema.StatusEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return statusClosedMsg{}
		}
		return statusMsg(event)
	}
}
