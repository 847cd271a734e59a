package write

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/meigma/eospkg/internal/pkgtype"
)

// CheckFileUnchanged verifies a file wasn't modified while it was copied.
// In strict mode, it compares size, mtime, and permissions before/after.
func CheckFileUnchanged(f *os.File, path string, before fs.FileInfo, strict bool) error {
	if !strict {
		return nil
	}
	after, err := f.Stat()
	if err != nil {
		return err
	}
	if after.Size() != before.Size() || !after.ModTime().Equal(before.ModTime()) || after.Mode().Perm() != before.Mode().Perm() {
		return fmt.Errorf("%w: %s", pkgtype.ErrSourceChanged, path)
	}
	return nil
}

// ValidateOpened checks that an opened source file still matches what was
// collected: a regular file of the planned size.
func ValidateOpened(path string, finfo fs.FileInfo, size uint32) error {
	if !finfo.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is no longer a regular file", pkgtype.ErrSourceChanged, path)
	}
	if finfo.Size() < int64(size) {
		return fmt.Errorf("%w: %s shrank to %d bytes, expected %d", pkgtype.ErrSourceChanged, path, finfo.Size(), size)
	}
	return nil
}
