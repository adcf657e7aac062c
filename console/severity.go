package console

import (
	"regexp"
	"strings"

	"github.com/serverwave/serverwave/schema"
)

// echoPrefix marks a locally synthesized echo of a submitted command.
const echoPrefix = "> "

var (
	warnWord  = regexp.MustCompile(`(?i)(\bwarn\b|\bwarning\b|\[warn\]|\[warning\])`)
	debugWord = regexp.MustCompile(`(?i)(\bdebug\b|\[debug\])`)
)

// Classify labels a plain line's importance. It is only consulted for lines
// without SGR markers; styled lines carry their own presentation.
func Classify(line string) schema.SeverityLabel {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "error") || strings.Contains(lower, "exception") {
		return schema.SeverityError
	}
	if warnWord.MatchString(line) {
		return schema.SeverityWarning
	}
	if debugWord.MatchString(line) {
		return schema.SeverityDebug
	}
	return schema.SeverityNone
}

// IsEcho reports whether the line is a locally echoed submitted command. Echo
// lines get their own visual hint regardless of classifier result.
func IsEcho(line string) bool {
	return strings.HasPrefix(line, echoPrefix)
}

// EchoLine synthesizes the local echo for a submitted command.
func EchoLine(command string) string {
	return echoPrefix + command
}
