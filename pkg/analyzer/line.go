package analyzer

import (
	"regexp"
	"strings"

	"github.com/logsift/logsift/internal/model"
)

var (
	// bracketRe captures the first bracketed group, assumed to hold the
	// timestamp in the supported log layouts.
	bracketRe = regexp.MustCompile(`\[(.*?)\]`)

	levelRe = regexp.MustCompile(`\[(INFO|WARNING|ERROR|CRITICAL)\]`)

	// errorMsgRe captures the message following an "ERROR...: " marker.
	// The colon must follow the ERROR token before any closing bracket;
	// bracketed-level lines fall through to the "[LEVEL]" split below so
	// the whole message survives as the pattern source.
	errorMsgRe = regexp.MustCompile(`ERROR[^\]]*:\s(.*)`)
)

// timestampField returns the content of the first bracketed group.
func timestampField(line string) (string, bool) {
	m := bracketRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ClassifyLine extracts the level and, for ERROR/CRITICAL lines, the error
// message. Message extraction tries the "ERROR...: " marker first and falls
// back to everything after the first "[LEVEL]" occurrence, trimmed. An
// empty message is not an error condition.
func ClassifyLine(line string) (model.Level, string) {
	level := model.LevelUnknown
	if m := levelRe.FindStringSubmatch(line); m != nil {
		level = model.ParseLevel(m[1])
	}

	if !level.IsError() {
		return level, ""
	}

	if m := errorMsgRe.FindStringSubmatch(line); m != nil {
		return level, m[1]
	}

	marker := "[" + level.String() + "]"
	if _, rest, ok := strings.Cut(line, marker); ok {
		return level, strings.TrimSpace(rest)
	}

	return level, ""
}
