package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when the archive is neither a tarball
	// nor a tarball compressed with a known algorithm.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrUnsafePath is returned when an archive entry would be written
	// outside the destination directory.
	ErrUnsafePath = errors.New("unsafe path in archive")
)

// ExtractionError reports a failed extraction.
// Every error returned by TarExtractor.Extract has this type.
type ExtractionError struct {
	// Archive is the path of the archive being extracted.
	Archive string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Archive, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}
