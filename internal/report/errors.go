package report

import "errors"

var (
	// ErrUnknownFormat is returned for an unsupported report format.
	ErrUnknownFormat = errors.New("unknown report format")

	// ErrNoResults is returned when the working directory has no dumped results.
	ErrNoResults = errors.New("no results to report")

	// ErrInvalidPublishConfig is returned when report.publish is incomplete.
	ErrInvalidPublishConfig = errors.New("invalid publish configuration")
)
