package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/serverwave/serverwave/schema"
)

// Styles holds the lipgloss styles used by the console view.
type Styles struct {
	Header    lipgloss.Style
	StatusOK  lipgloss.Style
	StatusBad lipgloss.Style
	Echo      lipgloss.Style
	Debug     lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Banner    lipgloss.Style
	BannerKey lipgloss.Style
	Help      lipgloss.Style
}

func defaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true),
		StatusOK:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		StatusBad: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Echo:      lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Debug:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1),
		BannerKey: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// ansiColors maps color tokens onto the 16 base terminal colors.
var ansiColors = map[schema.ColorToken]lipgloss.Color{
	schema.ColorBlack:   lipgloss.Color("0"),
	schema.ColorRed:     lipgloss.Color("1"),
	schema.ColorGreen:   lipgloss.Color("2"),
	schema.ColorYellow:  lipgloss.Color("3"),
	schema.ColorBlue:    lipgloss.Color("4"),
	schema.ColorMagenta: lipgloss.Color("5"),
	schema.ColorCyan:    lipgloss.Color("6"),
	schema.ColorWhite:   lipgloss.Color("7"),

	schema.ColorBrightBlack:   lipgloss.Color("8"),
	schema.ColorBrightRed:     lipgloss.Color("9"),
	schema.ColorBrightGreen:   lipgloss.Color("10"),
	schema.ColorBrightYellow:  lipgloss.Color("11"),
	schema.ColorBrightBlue:    lipgloss.Color("12"),
	schema.ColorBrightMagenta: lipgloss.Color("13"),
	schema.ColorBrightCyan:    lipgloss.Color("14"),
	schema.ColorBrightWhite:   lipgloss.Color("15"),
}

func segmentStyle(seg schema.StyledSegment) lipgloss.Style {
	style := lipgloss.NewStyle()
	if color, ok := ansiColors[seg.Foreground]; ok {
		style = style.Foreground(color)
	}
	if color, ok := ansiColors[seg.Background]; ok {
		style = style.Background(color)
	}
	if seg.Bold {
		style = style.Bold(true)
	}
	if seg.Dim {
		style = style.Faint(true)
	}
	if seg.Italic {
		style = style.Italic(true)
	}
	if seg.Underline {
		style = style.Underline(true)
	}
	return style
}

func (s Styles) severityStyle(label schema.SeverityLabel) (lipgloss.Style, bool) {
	switch label {
	case schema.SeverityDebug:
		return s.Debug, true
	case schema.SeverityWarning:
		return s.Warning, true
	case schema.SeverityError:
		return s.Error, true
	default:
		return lipgloss.Style{}, false
	}
}
