package analyzer

import "time"

// timestampLayouts are tried in fixed priority order; the first layout
// that parses wins. Covers python-logging style comma fractions, dotted
// fractions, plain seconds, and Apache/Nginx access-log time.
var timestampLayouts = []string{
	"2006-01-02 15:04:05,000000",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	"02/Jan/2006:15:04:05",
}

// ParseTimestamp parses the timestamp substring extracted from the first
// bracketed group of a log line. It returns ErrNoTimestampMatch when none
// of the known formats parse; that is not fatal to an analysis run.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoTimestampMatch
}
