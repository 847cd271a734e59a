//go:build !unix

package platform

import (
	"io/fs"
	"os"
)

// OpenFileNoFollow opens name for reading, rejecting symbolic links.
// The check is not atomic with the open on this platform.
func OpenFileNoFollow(root *os.Root, name string) (*os.File, error) {
	info, err := root.Lstat(name)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: ErrSymlink}
	}
	return root.Open(name)
}

// SyncDir is a no-op where directories cannot be opened for syncing.
func SyncDir(string) error {
	return nil
}
