package batch

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Committer is a pending file write.
// Exactly one of Commit or Discard must be called.
type Committer interface {
	io.Writer
	Commit() error
	Discard() error
}

// FileSink writes entries below a destination root.
//
// Files are written to a temporary file in the same directory and renamed
// to the final path on Commit, so partially written files are never visible
// at the final path. All paths are resolved through an os.Root and cannot
// escape it.
type FileSink struct {
	root      *os.Root
	overwrite bool
	perm      fs.FileMode
}

// FileSinkOption configures a FileSink.
type FileSinkOption func(*FileSink)

// WithOverwrite allows overwriting existing files.
// By default, existing files are skipped.
func WithOverwrite(overwrite bool) FileSinkOption {
	return func(s *FileSink) {
		s.overwrite = overwrite
	}
}

// WithFileMode sets the permission bits of extracted files. The default is 0644.
func WithFileMode(perm fs.FileMode) FileSinkOption {
	return func(s *FileSink) {
		s.perm = perm.Perm()
	}
}

// NewFileSink creates a FileSink that writes below root.
func NewFileSink(root *os.Root, opts ...FileSinkOption) *FileSink {
	s := &FileSink{root: root, perm: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkPath(op, name string) error {
	if name == "." || !fs.ValidPath(name) {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return nil
}

// Mkdir creates the directory name and any missing parents.
func (s *FileSink) Mkdir(name string) error {
	if err := checkPath("mkdir", name); err != nil {
		return err
	}
	return s.root.MkdirAll(filepath.FromSlash(name), 0o755)
}

// ShouldProcess returns false if name already exists and overwrite is disabled.
func (s *FileSink) ShouldProcess(name string) bool {
	if s.overwrite {
		return true
	}
	if checkPath("stat", name) != nil {
		return false
	}
	_, err := s.root.Lstat(filepath.FromSlash(name))
	return errors.Is(err, fs.ErrNotExist)
}

// Writer returns a Committer that writes name through a temp file.
// Parent directories are created as needed.
func (s *FileSink) Writer(name string) (Committer, error) {
	if err := checkPath("create", name); err != nil {
		return nil, err
	}
	destRel := filepath.FromSlash(name)
	dir := filepath.FromSlash(path.Dir(name))
	if err := s.root.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tempFile, tempRel, err := createTempFile(s.root, dir, ".eospkg-")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &fileCommitter{
		sink:     s,
		destRel:  destRel,
		tempFile: tempFile,
		tempRel:  tempRel,
	}, nil
}

// fileCommitter writes to a temp file and renames on Commit.
type fileCommitter struct {
	sink     *FileSink
	destRel  string
	tempFile *os.File
	tempRel  string
}

// Write implements io.Writer.
func (c *fileCommitter) Write(p []byte) (int, error) {
	return c.tempFile.Write(p)
}

// Commit closes the temp file, applies the mode, and renames to the final path.
func (c *fileCommitter) Commit() error {
	root := c.sink.root
	if err := c.tempFile.Close(); err != nil {
		_ = root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := root.Chmod(c.tempRel, c.sink.perm); err != nil {
		_ = root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("chmod: %w", err)
	}
	if c.sink.overwrite {
		if info, err := root.Lstat(c.destRel); err == nil && info.IsDir() {
			_ = root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
			return &fs.PathError{Op: "create", Path: filepath.ToSlash(c.destRel), Err: errors.New("is a directory")}
		}
	}
	if err := root.Rename(c.tempRel, c.destRel); err != nil {
		_ = root.Remove(c.tempRel) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename to %s: %w", c.destRel, err)
	}
	return nil
}

// Discard closes and removes the temp file.
func (c *fileCommitter) Discard() error {
	_ = c.tempFile.Close() //nolint:errcheck // we're cleaning up
	return c.sink.root.Remove(c.tempRel)
}

func createTempFile(root *os.Root, dir, prefix string) (*os.File, string, error) {
	const attempts = 10
	for range attempts {
		name, err := randomSuffix()
		if err != nil {
			return nil, "", err
		}
		relPath := filepath.Join(dir, prefix+name)
		f, err := root.OpenFile(relPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return f, relPath, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}
	}
	return nil, "", errors.New("create temp file: exhausted retries")
}

func randomSuffix() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
