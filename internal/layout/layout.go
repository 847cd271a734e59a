// Package layout computes where every part of a package lives before any of
// it is written.
//
// A package is laid out as header, entry table, then file data in table
// order. File offsets are absolute and assigned by a single forward pass
// starting at the end of the table.
package layout

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/meigma/eospkg/internal/collect"
	"github.com/meigma/eospkg/internal/format"
	"github.com/meigma/eospkg/internal/pkgtype"
	"github.com/meigma/eospkg/internal/sizing"
)

// ErrDuplicatePath is returned when two items share a path.
var ErrDuplicatePath = errors.New("layout: duplicate path")

// Layout is the fully resolved placement of a package.
type Layout struct {
	// Header is the input header with EntryCount filled in.
	Header format.Header

	HeaderSize uint32
	TableSize  uint32

	// DataStart is HeaderSize + TableSize, the offset of the first file byte.
	DataStart uint32

	// DataSize is the sum of all file sizes.
	DataSize uint32

	// TotalSize is DataStart + DataSize.
	TotalSize uint32

	// Entries are in table order.
	Entries []format.Entry
}

// Plan lays out items under hdr. Item order is preserved.
func Plan(hdr format.Header, items []collect.Item) (*Layout, error) {
	if len(items) == 0 {
		return nil, pkgtype.ErrEmpty
	}

	count, err := sizing.IntToUint32(len(items), pkgtype.ErrSizeOverflow)
	if err != nil {
		return nil, err
	}
	hdr.EntryCount = count
	hdr.Reserved = 0

	headerSize, err := hdr.Size()
	if err != nil {
		return nil, err
	}
	l := &Layout{Header: hdr}
	if l.HeaderSize, err = sizing.IntToUint32(headerSize, pkgtype.ErrSizeOverflow); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if !fs.ValidPath(it.Path) || it.Path == "." {
			return nil, &fs.PathError{Op: "plan", Path: it.Path, Err: fs.ErrInvalid}
		}
		if _, dup := seen[it.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, it.Path)
		}
		seen[it.Path] = struct{}{}
		if len(it.Path) > format.MaxNameLen {
			return nil, fmt.Errorf("%w: %w: %s: %d bytes", pkgtype.ErrConfig, format.ErrStringTooLong, it.Path, len(it.Path))
		}

		rs, err := sizing.IntToUint32(format.RecordSize(it.Path), pkgtype.ErrSizeOverflow)
		if err != nil {
			return nil, err
		}
		var ok bool
		if l.TableSize, ok = sizing.AddUint32(l.TableSize, rs); !ok {
			return nil, pkgtype.ErrSizeOverflow
		}
	}

	var ok bool
	if l.DataStart, ok = sizing.AddUint32(l.HeaderSize, l.TableSize); !ok {
		return nil, pkgtype.ErrSizeOverflow
	}

	l.Entries = make([]format.Entry, len(items))
	acc := l.DataStart
	for i, it := range items {
		if it.IsDir {
			l.Entries[i] = format.Dir{Path: it.Path}
			continue
		}
		size, err := sizing.ToUint32(it.Size, pkgtype.ErrSizeOverflow)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", it.Path, err)
		}
		l.Entries[i] = format.File{Path: it.Path, Size: size, Offset: acc}
		if acc, ok = sizing.AddUint32(acc, size); !ok {
			return nil, pkgtype.ErrSizeOverflow
		}
	}
	l.TotalSize = acc
	l.DataSize = acc - l.DataStart
	return l, nil
}

// AppendHeader appends the encoded header to dst.
func (l *Layout) AppendHeader(dst []byte) ([]byte, error) {
	return l.Header.AppendBinary(dst)
}

// AppendTable appends the encoded entry table to dst.
func (l *Layout) AppendTable(dst []byte) []byte {
	for _, e := range l.Entries {
		dst = format.AppendRecord(dst, format.RecordOf(e))
	}
	return dst
}

// Files returns the file entries in table order.
func (l *Layout) Files() []format.File {
	files := make([]format.File, 0, len(l.Entries))
	for _, e := range l.Entries {
		if f, ok := e.(format.File); ok {
			files = append(files, f)
		}
	}
	return files
}
