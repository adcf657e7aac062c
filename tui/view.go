package tui

import (
	"fmt"
	"strings"

	"github.com/serverwave/serverwave/schema"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Connecting..."
	}
	sections := []string{m.renderHeader()}
	if banner := m.renderBanner(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.viewport.View(), m.input.View(), m.renderHelp())
	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	status := m.session.Status()
	style := m.styles.StatusOK
	if status == schema.StatusError || status == schema.StatusStopped {
		style = m.styles.StatusBad
	}
	header := m.styles.Header.Render(string(m.session.ID())) + "  " + style.Render(string(status))
	if m.err != nil {
		header += "  " + m.styles.Error.Render(m.err.Error())
	}
	return header
}

func (m Model) renderBanner() string {
	detection := m.session.Detection()
	if detection == nil {
		return ""
	}
	body := fmt.Sprintf("Device login required: enter code %s at %s",
		m.styles.BannerKey.Render(detection.Code), detection.URL)
	return m.styles.Banner.Width(m.width - 2).Render(body)
}

func (m Model) renderHelp() string {
	parts := []string{
		m.keys.Submit.Help().Key + " " + m.keys.Submit.Help().Desc,
		m.keys.Bottom.Help().Key + " " + m.keys.Bottom.Help().Desc,
		m.keys.Clear.Help().Key + " " + m.keys.Clear.Help().Desc,
		m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc,
	}
	if m.session.Detection() != nil {
		parts = append(parts, m.keys.Dismiss.Help().Key+" "+m.keys.Dismiss.Help().Desc)
	}
	return m.styles.Help.Render(strings.Join(parts, "  ·  "))
}

// renderLines produces the viewport content from the session's cached render
// decisions.
func (m Model) renderLines() string {
	lines := m.session.Lines()
	rendered := m.session.Rendered()
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i < len(rendered) {
			out = append(out, renderLine(m.styles, line.Raw, rendered[i]))
			continue
		}
		out = append(out, line.Raw)
	}
	return strings.Join(out, "\n")
}

func renderLine(styles Styles, raw string, rendered schema.RenderedLine) string {
	if rendered.Kind == schema.LineStyled {
		var b strings.Builder
		for _, seg := range rendered.Segments {
			if seg.IsDefault() {
				b.WriteString(seg.Text)
				continue
			}
			b.WriteString(segmentStyle(seg).Render(seg.Text))
		}
		return b.String()
	}
	if rendered.Echo {
		return styles.Echo.Render(raw)
	}
	if style, ok := styles.severityStyle(rendered.Severity); ok {
		return style.Render(raw)
	}
	return raw
}
