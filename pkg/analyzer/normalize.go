package analyzer

import "regexp"

// maskRule rewrites all non-overlapping matches with a fixed placeholder.
type maskRule struct {
	re          *regexp.Regexp
	placeholder string
}

// maskRules is an ordered list, not a set. Order is load-bearing: UUID
// masking must precede NUM masking so a UUID's digit runs are not partially
// consumed first, and PATH masking runs after UUID/NUM so separators inside
// a not-yet-masked UUID cannot interfere with path detection.
var maskRules = []maskRule{
	{regexp.MustCompile(`[0-9a-f-]{36}`), "<UUID>"},
	{regexp.MustCompile(`\b\d+\b`), "<NUM>"},
	{regexp.MustCompile(`/[\w/.\-]+`), "<PATH>"},
	{regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "<IP>"},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`), "<EMAIL>"},
}

// NormalizePattern rewrites an error message into its canonical grouping
// key by masking volatile tokens. It is a pure function of the message
// text and idempotent: placeholders never re-match the masking rules.
func NormalizePattern(msg string) string {
	for _, r := range maskRules {
		msg = r.re.ReplaceAllString(msg, r.placeholder)
	}
	return msg
}
