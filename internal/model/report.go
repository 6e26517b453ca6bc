package model

import "time"

// PatternStat is one normalized error pattern with its frequency.
type PatternStat struct {
	Pattern    string  `json:"pattern"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Example    string  `json:"example"`
}

// ErrorBurst is a maximal contiguous run of ERROR/CRITICAL events whose
// every adjacent gap stays within the configured threshold and whose size
// meets the configured minimum. Never mutated after emission.
type ErrorBurst struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	ErrorCount      int       `json:"error_count"`

	// SampleMessages holds the first up-to-3 messages in the run.
	// Entries may be empty when message extraction failed for an event.
	SampleMessages []string `json:"sample_messages"`
}

// Report is the aggregate result of one analysis run.
type Report struct {
	TotalLogs       int     `json:"total_logs"`
	ErrorLogs       int     `json:"error_logs"`
	ErrorPercentage float64 `json:"error_percentage"`

	// TopErrorTypes lists at most 10 patterns, most frequent first.
	TopErrorTypes []PatternStat `json:"top_error_types"`

	// HourlyErrorDistribution maps hour of day (0-23) to error count.
	// Only hours with at least one error are present.
	HourlyErrorDistribution map[int]int `json:"hourly_error_distribution"`

	// LevelDistribution maps level keyword to event count.
	LevelDistribution map[string]int `json:"level_distribution"`

	ErrorBursts     []ErrorBurst `json:"error_bursts"`
	Recommendations []string     `json:"recommendations"`

	// SkippedLines counts lines dropped for parse reasons (no bracketed
	// timestamp, or none of the known formats matched). Lines outside the
	// analysis window are not counted here.
	SkippedLines int `json:"skipped_lines"`

	// Warning is set when no events survived the window filter.
	Warning string `json:"warning,omitempty"`
}
