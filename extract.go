package eospkg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/meigma/eospkg/internal/batch"
	"github.com/meigma/eospkg/internal/write"
)

// ExtractStats summarizes an extraction.
type ExtractStats struct {
	// Dirs is the number of directories created or already present.
	Dirs int

	// Files is the number of files written.
	Files int

	// Skipped is the number of files left alone because they already existed.
	Skipped int

	// Bytes is the number of file bytes written.
	Bytes uint64
}

// Extract writes every entry of the package below destDir, creating destDir
// if needed.
//
// Directories are created first in table order. Files are then written
// concurrently, each to a temporary file that is renamed into place once
// complete. All paths are resolved within destDir; entries that would
// escape it fail with an *fs.PathError wrapping fs.ErrInvalid.
func (p *Package) Extract(ctx context.Context, destDir string, opts ...ExtractOption) (ExtractStats, error) {
	cfg := extractConfig{workers: DefaultExtractWorkers, bufferSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = DefaultExtractWorkers
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return ExtractStats{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return ExtractStats{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer root.Close()

	sinkOpts := []batch.FileSinkOption{batch.WithOverwrite(cfg.overwrite)}
	if cfg.fileMode != 0 {
		sinkOpts = append(sinkOpts, batch.WithFileMode(cfg.fileMode))
	}
	sink := batch.NewFileSink(root, sinkOpts...)

	var stats ExtractStats
	var files []File
	var total uint64
	for _, e := range p.entries {
		switch v := e.(type) {
		case Dir:
			if err := sink.Mkdir(v.Path); err != nil {
				return stats, wrapExtractErr(err)
			}
			stats.Dirs++
		case File:
			if !sink.ShouldProcess(v.Path) {
				stats.Skipped++
				continue
			}
			files = append(files, v)
			total += uint64(v.Size)
		}
	}
	p.log().Info("extracting package", "dest", destDir, "files", len(files), "bytes", total)

	var done atomic.Int64
	var written atomic.Uint64
	bufs := sync.Pool{New: func() any {
		b := make([]byte, cfg.bufferSize)
		return &b
	}}
	err = batch.Process(ctx, files, cfg.workers, func(ctx context.Context, f File) error {
		bp := bufs.Get().(*[]byte) //nolint:errcheck // pool only holds *[]byte
		defer bufs.Put(bp)

		if err := p.extractFile(ctx, sink, f, *bp); err != nil {
			return err
		}
		n := done.Add(1)
		w := written.Add(uint64(f.Size))
		if cfg.progress != nil {
			cfg.progress(ProgressEvent{
				Stage:        StageExtracting,
				Path:         f.Path,
				BytesDone:    w,
				BytesTotal:   total,
				EntriesDone:  int(n),
				EntriesTotal: len(files),
			})
		}
		return nil
	})
	stats.Files = int(done.Load())
	stats.Bytes = written.Load()
	if err != nil {
		return stats, wrapExtractErr(err)
	}
	p.log().Debug("package extracted", "files", stats.Files, "skipped", stats.Skipped)
	return stats, nil
}

func (p *Package) extractFile(ctx context.Context, sink *batch.FileSink, f File, buf []byte) error {
	w, err := sink.Writer(f.Path)
	if err != nil {
		return err
	}
	n, err := write.CopyWithContext(ctx, w, p.section(f), buf)
	if err == nil && n != uint64(f.Size) {
		err = fmt.Errorf("%w: %s: read %d of %d bytes", ErrInvalidArchive, f.Path, n, f.Size)
	}
	if err != nil {
		_ = w.Discard() //nolint:errcheck // best-effort cleanup
		return err
	}
	return w.Commit()
}

func wrapExtractErr(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrInvalidArchive):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
}
