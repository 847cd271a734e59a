package eospkg

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/eospkg/internal/platform"
)

// Build builds a package from srcDir and writes it atomically to destPath.
//
// Metadata, entries and layout are resolved before destPath is touched, so
// ErrConfig and ErrEmpty never leave anything behind. The package is
// streamed to a temporary file in the destination directory, synced, and
// renamed over destPath. On failure the temporary file is removed and an
// existing destPath is left untouched.
//
// When destPath lies inside srcDir it is excluded from the package.
func Build(ctx context.Context, srcDir, destPath string, opts ...BuildOption) (*Result, error) {
	b := &builder{cfg: newBuildConfig(opts)}

	absDest, err := filepath.Abs(destPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	var extraSkip []SkipFunc
	if rel, ok := relativeTo(srcDir, absDest); ok {
		extraSkip = append(extraSkip, func(path string, _ fs.DirEntry) bool {
			return path == rel
		})
	}

	plan, err := b.prepare(ctx, srcDir, extraSkip)
	if err != nil {
		return nil, err
	}
	defer plan.root.Close()

	dir := filepath.Dir(absDest)
	tmp, err := os.CreateTemp(dir, ".eospkg-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %w", ErrIO, err)
	}
	tmpPath := tmp.Name()
	success := false
	defer func() {
		if !success {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	res, err := b.emit(ctx, plan, tmp)
	if err != nil {
		return nil, err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("%w: sync: %w", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("%w: close: %w", ErrIO, err)
	}
	if err := os.Rename(tmpPath, absDest); err != nil {
		return nil, fmt.Errorf("%w: rename: %w", ErrIO, err)
	}
	success = true

	if err := platform.SyncDir(dir); err != nil {
		b.log().Warn("sync destination directory", "dir", dir, "error", err)
	}
	b.log().Debug("package saved", "path", absDest)
	return res, nil
}

// relativeTo returns target as a slash-separated path relative to dir when
// target lies inside dir.
func relativeTo(dir, target string) (string, bool) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absDir, target)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
