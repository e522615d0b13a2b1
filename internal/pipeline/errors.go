package pipeline

import "errors"

// ErrDataNotFound is returned when no directory containing the marker
// exists under the data directory after extraction.
var ErrDataNotFound = errors.New("no sosreport data found")
