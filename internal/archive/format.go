package archive

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Format identifies the container format of an archive.
type Format string

const (
	// FormatTar is an uncompressed tarball.
	FormatTar Format = "tar"
	// FormatGzip is a gzip compressed tarball.
	FormatGzip Format = "gzip"
	// FormatBzip2 is a bzip2 compressed tarball.
	FormatBzip2 Format = "bzip2"
	// FormatXz is an xz compressed tarball.
	FormatXz Format = "xz"
	// FormatZstd is a zstd compressed tarball.
	FormatZstd Format = "zstd"
	// FormatUnknown is anything else.
	FormatUnknown Format = "unknown"
)

var (
	magicGzip  = []byte{0x1f, 0x8b}
	magicBzip2 = []byte("BZh")
	magicXz    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicZstd  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicUstar = []byte("ustar")
)

// ustarOffset is where the "ustar" magic sits in a tar header block.
const ustarOffset = 257

// DetectFormat inspects the leading bytes of an archive.
func DetectFormat(header []byte) Format {
	switch {
	case bytes.HasPrefix(header, magicGzip):
		return FormatGzip
	case bytes.HasPrefix(header, magicBzip2):
		return FormatBzip2
	case bytes.HasPrefix(header, magicXz):
		return FormatXz
	case bytes.HasPrefix(header, magicZstd):
		return FormatZstd
	case len(header) >= ustarOffset+len(magicUstar) &&
		bytes.Equal(header[ustarOffset:ustarOffset+len(magicUstar)], magicUstar):
		return FormatTar
	default:
		return FormatUnknown
	}
}

// decompress detects the format of r and returns a reader producing the
// tar stream. The returned close function releases decoder resources.
func decompress(r io.Reader) (io.Reader, Format, func(), error) {
	br := bufio.NewReaderSize(r, 4096)
	// A short archive is not an error here; DetectFormat decides.
	header, _ := br.Peek(ustarOffset + len(magicUstar))

	format := DetectFormat(header)
	noop := func() {}

	switch format {
	case FormatTar:
		return br, format, noop, nil
	case FormatGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, format, noop, fmt.Errorf("invalid gzip stream: %w", err)
		}
		return zr, format, func() { _ = zr.Close() }, nil
	case FormatBzip2:
		return bzip2.NewReader(br), format, noop, nil
	case FormatXz:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, format, noop, fmt.Errorf("invalid xz stream: %w", err)
		}
		return xr, format, noop, nil
	case FormatZstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, format, noop, fmt.Errorf("invalid zstd stream: %w", err)
		}
		return zr, format, zr.Close, nil
	default:
		return nil, format, noop, ErrUnsupportedFormat
	}
}
