// Package archivetest builds small support-bundle archives for tests.
package archivetest

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// Entry is one member of a test archive.
// Names ending in "/" are directories; a non-empty Link makes a symlink.
type Entry struct {
	Name    string
	Content string
	Link    string
}

// WriteTar writes entries as an uncompressed tarball to w.
func WriteTar(t *testing.T, w io.Writer, entries []Entry) {
	t.Helper()

	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: 0644}
		switch {
		case strings.HasSuffix(e.Name, "/"):
			hdr.Typeflag = tar.TypeDir
			hdr.Mode = 0755
		case e.Link != "":
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.Link
		default:
			hdr.Typeflag = tar.TypeReg
			hdr.Size = int64(len(e.Content))
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header %s: %v", e.Name, err)
		}
		if hdr.Typeflag == tar.TypeReg {
			if _, err := io.WriteString(tw, e.Content); err != nil {
				t.Fatalf("failed to write tar entry %s: %v", e.Name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
}

// WriteTarGz writes entries as a gzip compressed tarball at path.
func WriteTarGz(t *testing.T, path string, entries []Entry) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("failed to create archive directory: %v", err)
	}
	f, err := os.Create(path) //nolint:gosec // test path
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	WriteTar(t, zw, entries)
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
}

// Sosreport returns the entries of a minimal sosreport rooted at host.
// files maps paths relative to the data root to their content.
func Sosreport(host string, files map[string]string) []Entry {
	entries := []Entry{
		{Name: host + "/"},
		{Name: host + "/sos_commands/"},
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entries = append(entries, Entry{Name: host + "/" + name, Content: files[name]})
	}
	return entries
}
