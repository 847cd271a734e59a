package eospkg

import (
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/meigma/eospkg/internal/pathutil"
)

// Interface compliance.
var (
	_ fs.FS         = (*Package)(nil)
	_ fs.StatFS     = (*Package)(nil)
	_ fs.ReadFileFS = (*Package)(nil)
	_ fs.ReadDirFS  = (*Package)(nil)
)

// Package provides random access to the entries of a parsed package.
//
// Package implements fs.FS, fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS.
// It is safe for concurrent use when the underlying io.ReaderAt is.
type Package struct {
	src         io.ReaderAt
	size        int64
	header      Header
	tableOffset uint32
	dataStart   uint32
	entries     []Entry
	byPath      map[string]int
	children    map[string][]string
	logger      *slog.Logger
}

// Header returns the decoded header.
func (p *Package) Header() Header {
	return p.header
}

// Entries returns the entries in table order.
// The returned slice must not be modified.
func (p *Package) Entries() []Entry {
	return p.entries
}

// Len returns the number of entries.
func (p *Package) Len() int {
	return len(p.entries)
}

// Size returns the total package size in bytes.
func (p *Package) Size() int64 {
	return p.size
}

// TableOffset returns the offset of the entry table.
func (p *Package) TableOffset() uint32 {
	return p.tableOffset
}

// DataStart returns the offset just past the entry table.
func (p *Package) DataStart() uint32 {
	return p.dataStart
}

// Lookup returns the entry for path.
func (p *Package) Lookup(path string) (Entry, bool) {
	i, ok := p.byPath[path]
	if !ok {
		return nil, false
	}
	return p.entries[i], true
}

// Section returns a reader over the bytes of the file at path.
func (p *Package) Section(path string) (*io.SectionReader, error) {
	e, ok := p.Lookup(path)
	if !ok {
		return nil, &fs.PathError{Op: "section", Path: path, Err: fs.ErrNotExist}
	}
	f, ok := e.(File)
	if !ok {
		return nil, &fs.PathError{Op: "section", Path: path, Err: errNotFile}
	}
	return p.section(f), nil
}

func (p *Package) section(f File) *io.SectionReader {
	return io.NewSectionReader(p.src, int64(f.Offset), int64(f.Size))
}

// Open implements fs.FS.
func (p *Package) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &openDir{p: p, name: name}, nil
	}
	e, ok := p.Lookup(name)
	if !ok {
		if p.isImplicitDir(name) {
			return &openDir{p: p, name: name}, nil
		}
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	switch v := e.(type) {
	case File:
		return &openFile{SectionReader: p.section(v), entry: v}, nil
	default:
		return &openDir{p: p, name: name}, nil
	}
}

// Stat implements fs.StatFS.
func (p *Package) Stat(name string) (fs.FileInfo, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return dirInfo{name: "."}, nil
	}
	e, ok := p.Lookup(name)
	if !ok {
		if p.isImplicitDir(name) {
			return dirInfo{name: pathutil.Base(name)}, nil
		}
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return entryInfo(e), nil
}

// ReadFile implements fs.ReadFileFS.
func (p *Package) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
	}
	e, ok := p.Lookup(name)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}
	f, ok := e.(File)
	if !ok {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: errNotFile}
	}
	buf := make([]byte, f.Size)
	if _, err := io.ReadFull(p.section(f), buf); err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return buf, nil
}

// ReadDir implements fs.ReadDirFS.
//
// Entries are sorted by name. Parents that are not stored explicitly are
// still listed when they have children.
func (p *Package) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	if name != "." {
		e, ok := p.Lookup(name)
		switch {
		case ok:
			if _, isDir := e.(Dir); !isDir {
				return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
			}
		case !p.isImplicitDir(name):
			return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
		}
	}
	return p.dirEntries(name), nil
}

func (p *Package) dirEntries(name string) []fs.DirEntry {
	names := p.children[name]
	out := make([]fs.DirEntry, 0, len(names))
	for _, child := range names {
		var info fs.FileInfo = dirInfo{name: pathutil.Base(child)}
		if e, ok := p.Lookup(child); ok {
			info = entryInfo(e)
		}
		out = append(out, fs.FileInfoToDirEntry(info))
	}
	return out
}

// isImplicitDir reports whether name has children but no entry of its own.
func (p *Package) isImplicitDir(name string) bool {
	_, ok := p.children[name]
	return ok
}

// openFile is an fs.File over one file's bytes.
type openFile struct {
	*io.SectionReader
	entry File
}

func (f *openFile) Stat() (fs.FileInfo, error) { return entryInfo(f.entry), nil }
func (f *openFile) Close() error               { return nil }

// openDir implements fs.File and fs.ReadDirFile for directories.
type openDir struct {
	p       *Package
	name    string
	entries []fs.DirEntry
	pos     int
	loaded  bool
}

func (d *openDir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid}
}

func (d *openDir) Stat() (fs.FileInfo, error) {
	return dirInfo{name: pathutil.Base(d.name)}, nil
}

func (d *openDir) Close() error { return nil }

func (d *openDir) ReadDir(n int) ([]fs.DirEntry, error) {
	if !d.loaded {
		d.entries = d.p.dirEntries(d.name)
		d.loaded = true
	}
	rest := d.entries[d.pos:]
	if n <= 0 {
		d.pos = len(d.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	if n > len(rest) {
		n = len(rest)
	}
	d.pos += n
	return rest[:n], nil
}

func entryInfo(e Entry) fs.FileInfo {
	switch v := e.(type) {
	case File:
		return fileInfo{name: pathutil.Base(v.Path), size: int64(v.Size)}
	default:
		return dirInfo{name: pathutil.Base(e.EntryPath())}
	}
}

// fileInfo implements fs.FileInfo for regular files.
// Packages store no modes or times.
type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0o644 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }

// dirInfo implements fs.FileInfo for directories.
type dirInfo struct {
	name string
}

func (di dirInfo) Name() string       { return di.name }
func (di dirInfo) Size() int64        { return 0 }
func (di dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (di dirInfo) ModTime() time.Time { return time.Time{} }
func (di dirInfo) IsDir() bool        { return true }
func (di dirInfo) Sys() any           { return nil }
