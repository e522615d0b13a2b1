package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0750
	filePerm = 0640
)

// Extractor unpacks an archive into a destination directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// ExtractorFunc adapts an ordinary function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, archivePath, destDir string) error

// Extract calls f(ctx, archivePath, destDir).
func (f ExtractorFunc) Extract(ctx context.Context, archivePath, destDir string) error {
	return f(ctx, archivePath, destDir)
}

// TarExtractor extracts compressed or plain tarballs.
type TarExtractor struct {
	logger *slog.Logger
}

// TarOption configures a TarExtractor.
type TarOption func(*TarExtractor)

// WithLogger sets a custom logger for the extractor.
func WithLogger(logger *slog.Logger) TarOption {
	return func(e *TarExtractor) {
		e.logger = logger
	}
}

// NewTarExtractor creates a TarExtractor.
func NewTarExtractor(opts ...TarOption) *TarExtractor {
	e := &TarExtractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract unpacks archivePath into destDir.
// Any failure, including a context cancellation between entries, is
// returned as an *ExtractionError.
func (e *TarExtractor) Extract(ctx context.Context, archivePath, destDir string) error {
	if err := e.extract(ctx, archivePath, destDir); err != nil {
		return &ExtractionError{Archive: archivePath, Err: err}
	}
	return nil
}

func (e *TarExtractor) extract(ctx context.Context, archivePath, destDir string) error {
	f, err := os.Open(archivePath) //nolint:gosec // archive path is provided by the local operator
	if err != nil {
		return err
	}
	defer f.Close()

	stream, format, closeStream, err := decompress(f)
	if err != nil {
		return err
	}
	defer closeStream()

	e.logger.Debug("extracting archive", "archive", archivePath, "format", string(format), "dest", destDir)

	if err := os.MkdirAll(destDir, dirPerm); err != nil {
		return err
	}

	tr := tar.NewReader(stream)
	entries := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("corrupt %s archive: %w", format, err)
		}

		if err := e.writeEntry(tr, hdr, destDir); err != nil {
			return err
		}
		entries++
	}

	e.logger.Debug("archive extracted", "archive", archivePath, "entries", entries)
	return nil
}

// writeEntry materializes a single tar entry below destDir.
// Every path is resolved against the links already on disk before anything
// is written, so a chain of in-archive symlinks cannot lead outside destDir.
func (e *TarExtractor) writeEntry(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	target, skip, err := safeJoin(destDir, hdr.Name)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}
	rel := pathParts(filepath.Clean(filepath.FromSlash(strings.TrimSpace(hdr.Name))))
	parent := rel[:len(rel)-1]
	if !resolvesWithin(destDir, parent) {
		return fmt.Errorf("%w: %s crosses a link leaving the archive", ErrUnsafePath, hdr.Name)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		if !resolvesWithin(destDir, rel) {
			return fmt.Errorf("%w: %s crosses a link leaving the archive", ErrUnsafePath, hdr.Name)
		}
		return os.MkdirAll(target, dirPerm)

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
			return err
		}
		if err := removeIfSymlink(target); err != nil {
			return err
		}
		return writeFile(target, tr, hdr.Size)

	case tar.TypeSymlink:
		if !linkStaysInside(destDir, parent, hdr.Linkname) {
			e.logger.Debug("skipping symlink leaving the archive", "entry", hdr.Name, "link", hdr.Linkname)
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
			return err
		}
		if err := removeIfExists(target); err != nil {
			return err
		}
		return os.Symlink(hdr.Linkname, target)

	case tar.TypeLink:
		source, _, err := safeJoin(destDir, hdr.Linkname)
		if err != nil {
			return err
		}
		if !resolvesWithin(destDir, pathParts(filepath.Clean(filepath.FromSlash(hdr.Linkname)))) {
			return fmt.Errorf("%w: hard link %s -> %s", ErrUnsafePath, hdr.Name, hdr.Linkname)
		}
		if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
			return err
		}
		if err := removeIfExists(target); err != nil {
			return err
		}
		return os.Link(source, target)

	default:
		e.logger.Debug("skipping special archive entry", "entry", hdr.Name, "type", string(hdr.Typeflag))
		return nil
	}
}

func writeFile(target string, r io.Reader, size int64) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm) //nolint:gosec // target is validated by safeJoin
	if err != nil {
		return err
	}
	if _, err := io.CopyN(out, r, size); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// removeIfSymlink removes path when it is a symlink, so that a regular file
// entry replaces the link instead of writing through it.
func removeIfSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return os.Remove(path)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// safeJoin joins an archive entry name onto base.
// The archive root entry ("." or "./") is reported as skip. Absolute names
// and names escaping base yield ErrUnsafePath.
func safeJoin(base, name string) (string, bool, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	if clean == "." || clean == "" {
		return "", true, nil
	}
	if filepath.IsAbs(clean) {
		return "", false, fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(base, clean)
	if !within(base, target) {
		return "", false, fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, false, nil
}

// linkStaysInside reports whether a symlink created in the directory named
// by parent (components relative to base) and pointing to linkname resolves
// to a location inside base.
func linkStaysInside(base string, parent []string, linkname string) bool {
	if linkname == "" || filepath.IsAbs(filepath.FromSlash(linkname)) {
		return false
	}
	parts := append(append([]string{}, parent...), pathParts(filepath.FromSlash(linkname))...)
	return resolvesWithin(base, parts)
}

// maxLinkHops bounds symlink resolution so that link cycles terminate.
const maxLinkHops = 255

// resolvesWithin walks parts below base one component at a time, following
// symlinks that already exist on disk, and reports whether the walk stays
// inside base. Components that do not exist yet are taken literally.
// Absolute link targets never resolve inside.
func resolvesWithin(base string, parts []string) bool {
	base = filepath.Clean(base)
	cur := base
	hops := 0
	for len(parts) > 0 {
		p := parts[0]
		parts = parts[1:]

		switch p {
		case "", ".":
			continue
		case "..":
			if cur == base {
				return false
			}
			cur = filepath.Dir(cur)
			continue
		}

		next := filepath.Join(cur, p)
		info, err := os.Lstat(next)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			cur = next
			continue
		}

		hops++
		if hops > maxLinkHops {
			return false
		}
		link, err := os.Readlink(next)
		if err != nil || filepath.IsAbs(link) {
			return false
		}
		parts = append(pathParts(link), parts...)
	}
	return true
}

// pathParts splits an OS path into its components.
func pathParts(p string) []string {
	return strings.Split(filepath.ToSlash(p), "/")
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
