// Package model defines core data structures for LogSift.
package model

import "time"

// Level is the severity classification extracted from a log line.
type Level uint8

const (
	LevelUnknown Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// String returns the level keyword as it appears in log lines.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a level keyword.
func ParseLevel(s string) Level {
	switch s {
	case "INFO":
		return LevelInfo
	case "WARNING":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelUnknown
	}
}

// IsError reports whether the level counts toward error statistics.
func (l Level) IsError() bool {
	return l == LevelError || l == LevelCritical
}

// LogEvent is one successfully timestamped log line. Events are immutable
// after creation and owned by the analysis run that produced them.
type LogEvent struct {
	// Timestamp parsed from the first bracketed group of the line.
	Timestamp time.Time

	// Level extracted from the bracketed keyword, LevelUnknown if absent.
	Level Level

	// Message is the extracted error message for ERROR/CRITICAL lines.
	// Empty when extraction failed; such events are excluded from pattern
	// counting but still counted in totals.
	Message string

	// Raw is the trimmed original line.
	Raw string

	// LineNumber is the 1-based position in the input.
	LineNumber int
}
