package locator

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0750); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

// TestFindMarkerDirDepths tests that the marker is found at every nesting depth.
func TestFindMarkerDirDepths(t *testing.T) {
	t.Parallel()

	for depth := 0; depth <= 6; depth++ {
		t.Run("depth "+strconv.Itoa(depth), func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			want := root
			for i := 0; i < depth; i++ {
				want = filepath.Join(want, "level"+strconv.Itoa(i))
			}
			mkdirAll(t, filepath.Join(want, DefaultMarker, "kernel"))

			got, ok := FindMarkerDir(root, DefaultMarker)
			if !ok {
				t.Fatal("expected marker directory to be found")
			}
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

// TestFindMarkerDir tests edge cases of the search.
func TestFindMarkerDir(t *testing.T) {
	t.Parallel()

	t.Run("typical sosreport layout", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		host := filepath.Join(root, "host01")
		mkdirAll(t, filepath.Join(host, "sos_commands", "kernel"))
		mkdirAll(t, filepath.Join(host, "etc"))

		got, ok := FindMarkerDir(root, DefaultMarker)
		if !ok || got != host {
			t.Errorf("expected %q, got %q (ok=%v)", host, got, ok)
		}
	})

	t.Run("marker as a regular file counts", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		dir := filepath.Join(root, "a")
		mkdirAll(t, dir)
		if err := os.WriteFile(filepath.Join(dir, DefaultMarker), nil, 0600); err != nil {
			t.Fatal(err)
		}

		got, ok := FindMarkerDir(root, DefaultMarker)
		if !ok || got != dir {
			t.Errorf("expected %q, got %q (ok=%v)", dir, got, ok)
		}
	})

	t.Run("shallowest match wins over deeper ones", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		mkdirAll(t, filepath.Join(root, "a", "b", "c", DefaultMarker))
		mkdirAll(t, filepath.Join(root, "z", DefaultMarker))

		got, ok := FindMarkerDir(root, DefaultMarker)
		want := filepath.Join(root, "z")
		if !ok || got != want {
			t.Errorf("expected %q, got %q (ok=%v)", want, got, ok)
		}
	})

	t.Run("siblings at same depth resolve lexically", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		mkdirAll(t, filepath.Join(root, "beta", DefaultMarker))
		mkdirAll(t, filepath.Join(root, "alpha", DefaultMarker))

		for i := 0; i < 3; i++ {
			got, ok := FindMarkerDir(root, DefaultMarker)
			want := filepath.Join(root, "alpha")
			if !ok || got != want {
				t.Fatalf("run %d: expected %q, got %q (ok=%v)", i, want, got, ok)
			}
		}
	})

	t.Run("no marker returns false", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		mkdirAll(t, filepath.Join(root, "host01", "etc"))

		if got, ok := FindMarkerDir(root, DefaultMarker); ok {
			t.Errorf("expected not found, got %q", got)
		}
	})

	t.Run("missing root returns false", func(t *testing.T) {
		t.Parallel()
		if _, ok := FindMarkerDir(filepath.Join(t.TempDir(), "missing"), DefaultMarker); ok {
			t.Error("expected not found for missing root")
		}
	})

	t.Run("empty marker returns false", func(t *testing.T) {
		t.Parallel()
		if _, ok := FindMarkerDir(t.TempDir(), ""); ok {
			t.Error("expected not found for empty marker")
		}
	})

	t.Run("symlink cycles terminate", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		mkdirAll(t, filepath.Join(root, "a"))
		if err := os.Symlink(root, filepath.Join(root, "a", "loop")); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}

		if _, ok := FindMarkerDir(root, DefaultMarker); ok {
			t.Error("expected not found")
		}
	})
}
