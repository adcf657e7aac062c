package schema

// LogLine is one immutable record in a session's log buffer. Identity is the
// insertion index; lines are never reordered or mutated in place.
type LogLine struct {
	Index int
	Raw   string
}

// ColorToken names one of the fixed terminal colors addressable through SGR
// codes 30-37 (standard), 90-97 (bright) and 40-47 (background).
type ColorToken string

const (
	// ColorDefault means no explicit color is set.
	ColorDefault ColorToken = ""

	ColorBlack   ColorToken = "black"
	ColorRed     ColorToken = "red"
	ColorGreen   ColorToken = "green"
	ColorYellow  ColorToken = "yellow"
	ColorBlue    ColorToken = "blue"
	ColorMagenta ColorToken = "magenta"
	ColorCyan    ColorToken = "cyan"
	ColorWhite   ColorToken = "white"

	ColorBrightBlack   ColorToken = "bright-black"
	ColorBrightRed     ColorToken = "bright-red"
	ColorBrightGreen   ColorToken = "bright-green"
	ColorBrightYellow  ColorToken = "bright-yellow"
	ColorBrightBlue    ColorToken = "bright-blue"
	ColorBrightMagenta ColorToken = "bright-magenta"
	ColorBrightCyan    ColorToken = "bright-cyan"
	ColorBrightWhite   ColorToken = "bright-white"
)

// StyledSegment is a run of text carrying one active style. Concatenating the
// Text of a line's segments reproduces the raw line with escape sequences
// stripped.
type StyledSegment struct {
	Text       string
	Foreground ColorToken
	Background ColorToken
	Bold       bool
	Dim        bool
	Italic     bool
	Underline  bool
}

// IsDefault reports whether the segment carries no styling.
func (s StyledSegment) IsDefault() bool {
	return s.Foreground == ColorDefault && s.Background == ColorDefault &&
		!s.Bold && !s.Dim && !s.Italic && !s.Underline
}

// SeverityLabel is the heuristic importance of a plain (escape-free) line.
type SeverityLabel string

const (
	// SeverityNone marks an ordinary line.
	SeverityNone SeverityLabel = "none"
	// SeverityDebug marks a debug line.
	SeverityDebug SeverityLabel = "debug"
	// SeverityWarning marks a warning line.
	SeverityWarning SeverityLabel = "warning"
	// SeverityError marks an error line.
	SeverityError SeverityLabel = "error"
)

// LineKind tags the rendering path chosen for a line at ingestion time.
type LineKind string

const (
	// LineStyled means the line carried SGR markers and renders as segments.
	LineStyled LineKind = "styled"
	// LineClassified means the line is plain text with a severity hint.
	LineClassified LineKind = "classified"
)

// RenderedLine is the cached render decision for one LogLine: either a styled
// segment sequence or a plain line with a severity hint. Echo marks a locally
// synthesized command echo, which overrides any severity-derived hint.
type RenderedLine struct {
	Kind     LineKind
	Segments []StyledSegment
	Severity SeverityLabel
	Echo     bool
}

// DeviceCode is a detected authentication handshake: the verification URL and
// the human-enterable code embedded in it.
type DeviceCode struct {
	URL  string
	Code string
}
