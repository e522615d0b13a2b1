package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sosanalyzer/internal/config"
	"github.com/nao1215/sosanalyzer/internal/model"
	"github.com/nao1215/sosanalyzer/internal/workdir"
)

// InventoryScanner writes the list of bundle files with their digests.
type InventoryScanner struct {
	workers int
	logger  *slog.Logger
}

// Option configures an InventoryScanner.
type Option func(*InventoryScanner)

// WithWorkers sets the default number of concurrent hashing goroutines.
// The scan.workers configuration key takes precedence.
func WithWorkers(n int) Option {
	return func(s *InventoryScanner) {
		s.workers = n
	}
}

// WithLogger sets a custom logger for the scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *InventoryScanner) {
		s.logger = logger
	}
}

// NewInventoryScanner creates an InventoryScanner.
func NewInventoryScanner(opts ...Option) *InventoryScanner {
	s := &InventoryScanner{
		workers: runtime.NumCPU(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns "inventory".
func (s *InventoryScanner) Name() string { return "inventory" }

// Scan walks dataRoot and writes scanned/inventory.json. With
// scan.skip_inventory set, an inventory left by an earlier run is removed.
// Symbolic links are neither followed nor listed.
func (s *InventoryScanner) Scan(ctx context.Context, wd, dataRoot string, conf config.Values) error {
	if conf.Bool("scan.skip_inventory", false) {
		s.logger.Info("inventory scan disabled")
		return workdir.RemoveArtifact(workdir.ScannedPath(wd, workdir.InventoryFile))
	}

	var paths []string
	err := filepath.WalkDir(dataRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dataRoot {
				return err
			}
			s.logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dataRoot, err)
	}

	entries := make([]model.FileEntry, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, conf.Int("scan.workers", s.workers)))

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := s.describe(dataRoot, path)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	inv := model.Inventory{Files: entries}
	for _, e := range entries {
		inv.TotalBytes += e.Size
	}

	s.logger.Info("inventory complete", "files", len(entries), "bytes", inv.TotalBytes)
	return workdir.WriteJSON(workdir.ScannedPath(wd, workdir.InventoryFile), inv)
}

// describe stats and hashes one file. Unreadable content leaves the digest
// empty instead of failing the scan.
func (s *InventoryScanner) describe(root, path string) (model.FileEntry, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return model.FileEntry{}, fmt.Errorf("failed to relativize %s: %w", path, err)
	}
	info, err := os.Lstat(path)
	if err != nil {
		return model.FileEntry{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	entry := model.FileEntry{
		Path: filepath.ToSlash(rel),
		Size: info.Size(),
		Mode: info.Mode().String(),
	}
	sum, err := hashFile(path)
	if err != nil {
		s.logger.Warn("failed to hash file", "path", entry.Path, "error", err)
		return entry, nil
	}
	entry.SHA256 = sum
	return entry, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
