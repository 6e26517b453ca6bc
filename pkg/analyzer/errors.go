package analyzer

import "errors"

// ErrNoTimestampMatch is returned when a bracketed timestamp field
// matches none of the known formats. The caller skips the line.
var ErrNoTimestampMatch = errors.New("analyzer: no timestamp format matched")
