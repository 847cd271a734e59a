//go:build unix

package platform

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// OpenFileNoFollow opens name for reading and fails with ErrSymlink if name
// is a symlink. os.Root resolves in-root symlinks itself, so the opened file
// is also checked against an Lstat of name.
func OpenFileNoFollow(root *os.Root, name string) (*os.File, error) {
	f, err := root.OpenFile(name, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
	if err != nil {
		if errors.Is(err, syscall.ELOOP) {
			return nil, &os.PathError{Op: "open", Path: name, Err: ErrSymlink}
		}
		return nil, err
	}
	if err := checkNotLink(root, name, f); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func checkNotLink(root *os.Root, name string, f *os.File) error {
	linfo, err := root.Lstat(name)
	if err != nil {
		return err
	}
	if linfo.Mode()&fs.ModeSymlink != 0 {
		return &os.PathError{Op: "open", Path: name, Err: ErrSymlink}
	}
	finfo, err := f.Stat()
	if err != nil {
		return err
	}
	if !os.SameFile(linfo, finfo) {
		return &os.PathError{Op: "open", Path: name, Err: ErrSymlink}
	}
	return nil
}

// SyncDir flushes directory metadata so a completed rename survives a crash.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		d.Close()
		return err
	}
	return d.Close()
}
