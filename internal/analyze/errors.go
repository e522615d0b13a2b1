package analyze

import "errors"

var (
	// ErrInvalidRule is returned when a rule cannot be compiled.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrDuplicateRule is returned when two rules share an ID.
	ErrDuplicateRule = errors.New("duplicate rule id")
)
