// Package locator finds the data root of an extracted support bundle.
//
// Bundles rarely extract into a flat tree: a sosreport archive normally
// holds a single host-named directory (sosreport-host01-2024...) and the
// real data sits below it. The data root is the first directory that
// directly contains the marker entry, sos_commands.
package locator

import (
	"os"
	"path/filepath"
)

// DefaultMarker is the entry whose presence identifies a sosreport data root.
const DefaultMarker = "sos_commands"

// FindMarkerDir searches the tree under root for a directory that directly
// contains an entry named marker and returns it.
//
// The search is breadth-first starting with root itself, and children are
// visited in lexical order, so the shallowest match wins and the result is
// the same for the same tree. Symbolic links to directories are not
// followed and unreadable directories are skipped. The second result is
// false when no directory qualifies, including when root does not exist.
func FindMarkerDir(root, marker string) (string, bool) {
	if marker == "" {
		return "", false
	}

	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		if _, err := os.Lstat(filepath.Join(dir, marker)); err == nil {
			return dir, true
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			// DirEntry.IsDir is false for symlinks, which keeps the walk finite.
			if e.IsDir() {
				queue = append(queue, filepath.Join(dir, e.Name()))
			}
		}
	}

	return "", false
}
