package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/serverwave/serverwave/schema"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, m.contentHeight())
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = m.contentHeight()
		}
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.refreshContent()
		return m, nil

	case attachedMsg:
		m.lines = msg.lines
		m.refreshContent()
		m.viewport.GotoBottom()
		cmds := []tea.Cmd{waitLine(m.lines)}
		if m.statuses != nil && m.statusCh == nil {
			ch, cancel := m.statuses.SubscribeStatus(m.session.ID())
			m.statusCh = ch
			m.cancelStatus = cancel
			cmds = append(cmds, waitStatus(m.statusCh))
		}
		return m, tea.Batch(cmds...)

	case attachErrMsg:
		m.err = msg.err
		m.log.Warn("console attach failed", "err", msg.err)
		return m, nil

	case lineMsg:
		update := m.session.HandleLine(schema.LineEvent(msg))
		if !update.Discarded {
			m.refreshContent()
			if update.Jump {
				m.viewport.GotoBottom()
			}
		}
		return m, waitLine(m.lines)

	case linesClosedMsg:
		m.lines = nil
		return m, nil

	case statusMsg:
		m.session.HandleStatus(schema.StatusEvent(msg))
		m.refreshContent()
		return m, waitStatus(m.statusCh)

	case statusClosedMsg:
		m.statusCh = nil
		return m, nil
	}

	// cursor blink and other component messages
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.detach()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		text := m.input.Value()
		if err := m.session.SubmitCommand(m.ctx, text); err != nil {
			m.err = err
		}
		m.input.Reset()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		if value := m.session.History().RecallPrevious(); value != "" {
			m.input.SetValue(value)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		value := m.session.History().RecallNext()
		m.input.SetValue(value)
		m.input.CursorEnd()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.viewport.HalfPageUp()
		m.observeScroll()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.HalfPageDown()
		m.observeScroll()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.session.Repin()
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.session.Clear()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.session.Detection() != nil {
			m.session.DismissDetection()
			m.refreshContent()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.ScrollUp(3)
		m.observeScroll()
	case tea.MouseButtonWheelDown:
		m.viewport.ScrollDown(3)
		m.observeScroll()
	}
	return m, nil
}

// observeScroll reports the viewport position to the session as an offset
// from the bottom of the buffer.
func (m *Model) observeScroll() {
	offset := m.viewport.TotalLineCount() - m.viewport.Height - m.viewport.YOffset
	if offset < 0 {
		offset = 0
	}
	m.session.ObserveScroll(offset)
}

func (m *Model) detach() {
	m.session.Detach()
	if m.cancelStatus != nil {
		m.cancelStatus()
		m.cancelStatus = nil
	}
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	// Banner visibility changes the space left for the viewport, so the
	// height is recomputed on every refresh, not only on resize.
	m.viewport.Height = m.contentHeight()
	m.viewport.SetContent(m.renderLines())
	if m.session.Pinned() {
		m.viewport.GotoBottom()
	}
}

func (m *Model) contentHeight() int {
	// header + input + help lines surround the viewport
	height := m.height - 3
	if m.session.Detection() != nil {
		height -= 3
	}
	if height < 1 {
		height = 1
	}
	return height
}
