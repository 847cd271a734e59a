package eospkg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/meigma/eospkg/internal/format"
	"github.com/meigma/eospkg/internal/pathutil"
)

// Open parses the package held in the first size bytes of r.
//
// The header and entry table are read and validated eagerly: every entry
// name must be a valid unrooted slash path, directories must carry zero
// offset and size, and every file range must lie inside the data region.
// File contents are read lazily through r.
func Open(r io.ReaderAt, size int64, opts ...OpenOption) (*Package, error) {
	cfg := newOpenConfig(opts)
	if !cfg.profile.Valid() {
		return nil, fmt.Errorf("%w: %w: %d", ErrConfig, format.ErrUnknownProfile, cfg.profile)
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrInvalidArchive, size)
	}

	if cfg.digest != "" {
		if err := verifyDigest(r, size, cfg); err != nil {
			return nil, err
		}
	}

	p := &Package{src: r, size: size, logger: cfg.logger}
	if err := p.parse(&cfg); err != nil {
		return nil, err
	}
	p.log().Debug("opened package",
		"kind", p.header.Kind.String(),
		"entries", len(p.entries),
		"size", size)
	return p, nil
}

// PackageFile is a Package backed by an open file.
// Close must be called to release the file handle.
type PackageFile struct {
	*Package
	file *os.File
}

// OpenFile opens the package at path.
//
// The returned PackageFile must be closed to release file resources.
func OpenFile(path string, opts ...OpenOption) (*PackageFile, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided path is intentional
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInvalidArchive, path)
	}

	p, err := Open(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &PackageFile{Package: p, file: f}, nil
}

// Close closes the underlying file.
func (pf *PackageFile) Close() error {
	if pf.file == nil {
		return nil
	}
	err := pf.file.Close()
	pf.file = nil
	return err
}

func verifyDigest(r io.ReaderAt, size int64, cfg openConfig) error {
	if err := cfg.digest.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	v := cfg.digest.Verifier()
	if _, err := io.Copy(v, io.NewSectionReader(r, 0, size)); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if !v.Verified() {
		return fmt.Errorf("%w: expected %s", ErrDigestMismatch, cfg.digest)
	}
	return nil
}

// invalid wraps err as a structural validation failure.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidArchive, err)
}

// parse reads and validates the header and entry table.
func (p *Package) parse(cfg *openConfig) error {
	br := bufio.NewReader(io.NewSectionReader(p.src, 0, p.size))

	hdr, tableOffset, err := format.ReadHeader(br, cfg.profile)
	if err != nil {
		return invalid(fmt.Errorf("header: %w", err))
	}
	if cfg.kind != format.KindUnknown && hdr.Kind != cfg.kind {
		return fmt.Errorf("%w: want %s, got %s", ErrKindMismatch, cfg.kind, hdr.Kind)
	}

	maxEntries := cfg.maxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxEntries > 0 && uint64(hdr.EntryCount) > uint64(maxEntries) {
		return invalid(fmt.Errorf("%w: %d entries", ErrTooManyEntries, hdr.EntryCount))
	}
	// Every record is at least 16 bytes.
	if uint64(tableOffset)+uint64(hdr.EntryCount)*16 > uint64(p.size) {
		return invalid(fmt.Errorf("entry count %d exceeds package size %d", hdr.EntryCount, p.size))
	}

	records := make([]format.Record, 0, hdr.EntryCount)
	tableEnd := uint64(tableOffset)
	for i := range hdr.EntryCount {
		rec, err := format.ReadRecord(br, MaxNameLen)
		if err != nil {
			return invalid(fmt.Errorf("entry %d: %w", i, err))
		}
		tableEnd += uint64(format.RecordSize(rec.Name))
		records = append(records, rec)
	}
	if tableEnd > uint64(p.size) || tableEnd > math.MaxUint32 {
		return invalid(fmt.Errorf("entry table ends at %d past package size %d", tableEnd, p.size))
	}

	p.header = hdr
	p.tableOffset = tableOffset
	p.dataStart = uint32(tableEnd)
	return p.index(records)
}

// index validates records and builds the lookup tables. Every ancestor of
// an entry is linked to its parent, so parents without an entry of their own
// still appear as directories.
func (p *Package) index(records []format.Record) error {
	p.entries = make([]Entry, len(records))
	p.byPath = make(map[string]int, len(records))
	p.children = make(map[string][]string)

	for i, rec := range records {
		if err := p.validateRecord(rec); err != nil {
			return invalid(err)
		}
		if _, dup := p.byPath[rec.Name]; dup {
			return invalid(fmt.Errorf("%w: %s", ErrDuplicatePath, rec.Name))
		}
		p.entries[i] = rec.Entry()
		p.byPath[rec.Name] = i
	}

	linked := make(map[string]bool, len(records))
	for _, e := range p.entries {
		for name := e.EntryPath(); name != "." && !linked[name]; name = pathutil.Parent(name) {
			linked[name] = true
			parent := pathutil.Parent(name)
			p.children[parent] = append(p.children[parent], name)
		}
	}
	for parent, names := range p.children {
		if i, ok := p.byPath[parent]; ok {
			if _, isFile := p.entries[i].(File); isFile {
				return invalid(&fs.PathError{Op: "open", Path: parent, Err: errNotDir})
			}
		}
		slices.Sort(names)
	}
	return nil
}

func (p *Package) validateRecord(rec format.Record) error {
	if rec.Name == "." || !fs.ValidPath(rec.Name) {
		return &fs.PathError{Op: "open", Path: rec.Name, Err: fs.ErrInvalid}
	}
	if rec.IsDir {
		if rec.Offset != 0 || rec.Size != 0 {
			return fmt.Errorf("directory %s has offset %d size %d", rec.Name, rec.Offset, rec.Size)
		}
		return nil
	}
	if rec.Offset < p.dataStart {
		return fmt.Errorf("file %s offset %d before data start %d", rec.Name, rec.Offset, p.dataStart)
	}
	if uint64(rec.Offset)+uint64(rec.Size) > uint64(p.size) {
		return fmt.Errorf("file %s range [%d, %d) past package size %d",
			rec.Name, rec.Offset, uint64(rec.Offset)+uint64(rec.Size), p.size)
	}
	return nil
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Package) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

var (
	errNotFile = errors.New("is a directory")
	errNotDir  = errors.New("file has children")
)
