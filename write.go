package eospkg

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/eospkg/internal/collect"
	"github.com/meigma/eospkg/internal/format"
	"github.com/meigma/eospkg/internal/layout"
	"github.com/meigma/eospkg/internal/manifest"
	"github.com/meigma/eospkg/internal/platform"
	"github.com/meigma/eospkg/internal/write"
)

// Result describes a package produced by Write or Build.
type Result struct {
	// Header is the header as written, with EntryCount set.
	Header Header

	// Entries are in table order with their final offsets.
	Entries []Entry

	HeaderSize uint32
	TableSize  uint32
	DataStart  uint32
	DataSize   uint32
	TotalSize  uint32

	// Digest is the sha256 digest of the complete package.
	Digest digest.Digest
}

// Write builds a package from the contents of srcDir and streams it to w.
//
// Metadata is resolved and every entry is collected and placed before the
// first byte is written. The package is then emitted as header, entry table
// and file data in table order. A source file that cannot be read in full
// aborts the write with ErrIO; w may hold a partial package in that case.
//
// Use Build to write to a file atomically.
func Write(ctx context.Context, w io.Writer, srcDir string, opts ...BuildOption) (*Result, error) {
	b := &builder{cfg: newBuildConfig(opts)}
	plan, err := b.prepare(ctx, srcDir, nil)
	if err != nil {
		return nil, err
	}
	defer plan.root.Close()

	return b.emit(ctx, plan, w)
}

// builder holds state for a single build.
type builder struct {
	cfg buildConfig
}

// plannedBuild is a source tree with its resolved layout.
type plannedBuild struct {
	root   *os.Root
	layout *layout.Layout
}

// log returns the logger, falling back to a discard logger if nil.
func (b *builder) log() *slog.Logger {
	if b.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.cfg.logger
}

// prepare resolves the header, walks srcDir and lays out the package.
// The caller must close the returned root.
func (b *builder) prepare(ctx context.Context, srcDir string, extraSkip []SkipFunc) (*plannedBuild, error) {
	hdr, err := b.resolveHeader(srcDir)
	if err != nil {
		return nil, err
	}
	b.log().Info("building package",
		"dir", srcDir,
		"kind", hdr.Kind.String(),
		"profile", hdr.Profile.String(),
		"name", hdr.Name,
		"version", hdr.Version)

	root, err := os.OpenRoot(srcDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	skip := append(append([]SkipFunc(nil), b.cfg.skip...), extraSkip...)
	collectOpts := []collect.Option{
		collect.WithOrder(b.cfg.order),
		collect.WithSkip(skip...),
		collect.WithMaxEntries(b.cfg.maxEntries),
		collect.WithLogger(b.cfg.logger),
	}
	if b.cfg.progress != nil {
		collectOpts = append(collectOpts, collect.WithProgress(b.cfg.progress))
	}
	items, err := collect.Collect(ctx, root, collectOpts...)
	if err != nil {
		root.Close()
		return nil, classifyCollectErr(err)
	}

	l, err := layout.Plan(hdr, items)
	if err != nil {
		root.Close()
		return nil, err
	}
	b.log().Debug("package planned",
		"entries", len(l.Entries),
		"header_size", l.HeaderSize,
		"table_size", l.TableSize,
		"total_size", l.TotalSize)

	return &plannedBuild{root: root, layout: l}, nil
}

// resolveHeader combines the manifest and explicit metadata into a header.
func (b *builder) resolveHeader(srcDir string) (Header, error) {
	cfg := &b.cfg
	if !cfg.profile.Valid() {
		return Header{}, fmt.Errorf("%w: %w: %d", ErrConfig, format.ErrUnknownProfile, cfg.profile)
	}
	if _, err := cfg.kind.Magic(); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	base, err := b.loadManifest(srcDir)
	if err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	m := base.Merge(manifest.Manifest{
		ID:      cfg.meta.ID,
		Name:    cfg.meta.Name,
		Version: cfg.meta.Version,
	})
	if err := m.Validate(); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	hdr := Header{
		Kind:    cfg.kind,
		Profile: cfg.profile,
		Name:    m.Name,
		ID:      m.ID,
		Version: m.Version,
	}
	if cfg.profile == format.ProfileVariable {
		for _, v := range []string{hdr.Name, hdr.ID, hdr.Version} {
			if len(v) > format.MaxVarStringLen {
				return Header{}, fmt.Errorf("%w: %w: %d bytes", ErrConfig, format.ErrStringTooLong, len(v))
			}
		}
	}
	return hdr, nil
}

// loadManifest returns the configured manifest, or an empty one when none
// is configured and the source tree has none.
func (b *builder) loadManifest(srcDir string) (manifest.Manifest, error) {
	path := b.cfg.manifestPath
	if !b.cfg.manifestSet {
		path = filepath.Join(srcDir, manifest.FileName)
	}
	if path == "" {
		return manifest.Manifest{}, nil
	}

	m, err := manifest.LoadFile(path)
	if err != nil {
		if !b.cfg.manifestSet && errors.Is(err, fs.ErrNotExist) {
			return manifest.Manifest{}, nil
		}
		return manifest.Manifest{}, err
	}
	b.log().Debug("loaded manifest", "path", path, "id", m.ID)
	return *m, nil
}

func classifyCollectErr(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrTooManyEntries):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}

// emit writes the planned package to w.
func (b *builder) emit(ctx context.Context, plan *plannedBuild, w io.Writer) (*Result, error) {
	l := plan.layout
	hasher := sha256.New()
	cw := &write.CountingWriter{W: io.MultiWriter(w, hasher)}

	head, err := l.AppendHeader(make([]byte, 0, l.DataStart))
	if err != nil {
		return nil, err
	}
	head = l.AppendTable(head)
	if _, err := cw.Write(head); err != nil {
		return nil, fmt.Errorf("%w: write header: %w", ErrIO, err)
	}

	files := l.Files()
	buf := make([]byte, b.cfg.bufferSize)
	for i, f := range files {
		if cw.N != uint64(f.Offset) {
			return nil, fmt.Errorf("%w: %s: planned offset %d, writer at %d", ErrIO, f.Path, f.Offset, cw.N)
		}
		if err := b.copyFile(ctx, plan.root, cw, buf, f); err != nil {
			return nil, err
		}
		b.reportWrite(f.Path, cw.N-uint64(l.DataStart), uint64(l.DataSize), i+1, len(files))
	}
	if cw.N != uint64(l.TotalSize) {
		return nil, fmt.Errorf("%w: wrote %d bytes, planned %d", ErrIO, cw.N, l.TotalSize)
	}

	res := &Result{
		Header:     l.Header,
		Entries:    l.Entries,
		HeaderSize: l.HeaderSize,
		TableSize:  l.TableSize,
		DataStart:  l.DataStart,
		DataSize:   l.DataSize,
		TotalSize:  l.TotalSize,
		Digest:     sha256Digest(hasher),
	}
	b.log().Info("package written", "entries", len(res.Entries), "size", res.TotalSize, "digest", res.Digest.String())
	return res, nil
}

// copyFile streams one planned file into w.
func (b *builder) copyFile(ctx context.Context, root *os.Root, w io.Writer, buf []byte, f format.File) error {
	strict := b.cfg.changeDetection == ChangeDetectionStrict

	src, err := platform.OpenFileNoFollow(root, filepath.FromSlash(f.Path))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := write.ValidateOpened(f.Path, info, f.Size); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if err := write.File(ctx, src, w, buf, f.Size, strict); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrIO, &fs.PathError{Op: "copy", Path: f.Path, Err: err})
	}
	if err := write.CheckFileUnchanged(src, f.Path, info, strict); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}

// reportWrite sends a write progress event if a callback is configured.
func (b *builder) reportWrite(path string, bytesDone, bytesTotal uint64, done, total int) {
	if b.cfg.progress == nil {
		return
	}
	b.cfg.progress(ProgressEvent{
		Stage:        StageWriting,
		Path:         path,
		BytesDone:    bytesDone,
		BytesTotal:   bytesTotal,
		EntriesDone:  done,
		EntriesTotal: total,
	})
}

func sha256Digest(h hash.Hash) digest.Digest {
	return digest.NewDigestFromEncoded(digest.SHA256, hex.EncodeToString(h.Sum(nil)))
}
