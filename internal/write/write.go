// Package write streams source file contents into a package's data region.
package write

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meigma/eospkg/internal/pkgtype"
)

// File copies exactly size bytes from f to w through buf.
//
// A file that ends early fails with pkgtype.ErrSourceChanged. In strict mode
// a file that still has bytes after size also fails; otherwise the excess
// is ignored.
func File(ctx context.Context, f *os.File, w io.Writer, buf []byte, size uint32, strict bool) error {
	n, err := CopyWithContext(ctx, w, io.LimitReader(f, int64(size)), buf)
	if err != nil {
		if errors.Is(err, ErrOverflow) {
			return pkgtype.ErrSizeOverflow
		}
		return err
	}
	if n != uint64(size) {
		return fmt.Errorf("%w: expected %d bytes, got %d", pkgtype.ErrSourceChanged, size, n)
	}
	if !strict {
		return nil
	}

	var probe [1]byte
	m, err := f.Read(probe[:])
	if m > 0 {
		return fmt.Errorf("%w: file grew past %d bytes", pkgtype.ErrSourceChanged, size)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
