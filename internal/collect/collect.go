// Package collect walks a source tree and produces the ordered entry list
// that becomes a package's table.
package collect

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"

	"github.com/meigma/eospkg/internal/pkgtype"
)

// Item is one collected entry. Size is zero for directories.
type Item struct {
	Path  string
	IsDir bool
	Size  int64
}

// collector holds state for a single walk.
type collector struct {
	cfg   config
	fsys  fs.FS
	items []Item
	max   int
}

func (c *collector) log() *slog.Logger {
	if c.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.cfg.logger
}

// Collect walks root and returns its directories and regular files in the
// configured order. The root itself is not an entry. Symbolic links and
// special files are skipped.
//
// An empty result is not an error here; callers decide whether an empty
// tree is acceptable.
func Collect(ctx context.Context, root *os.Root, opts ...Option) ([]Item, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	maxEntries := cfg.maxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}

	c := &collector{
		cfg:   cfg,
		fsys:  root.FS(),
		items: make([]Item, 0, 64),
		max:   maxEntries,
	}

	var err error
	switch cfg.order {
	case OrderLexical:
		err = c.walkLexical(ctx)
	case OrderGrouped:
		err = c.walkGrouped(ctx, ".")
	default:
		err = fmt.Errorf("collect: unknown order %d", cfg.order)
	}
	if err != nil {
		return nil, err
	}
	return c.items, nil
}

func (c *collector) walkLexical(ctx context.Context) error {
	return fs.WalkDir(c.fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == "." {
			return nil
		}
		item, keep, err := c.classify(ctx, p, d)
		if err != nil {
			return err
		}
		if !keep {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		return c.add(item)
	})
}

func (c *collector) walkGrouped(ctx context.Context, dir string) error {
	des, err := fs.ReadDir(c.fsys, dir)
	if err != nil {
		return err
	}

	var dirs, files []Item
	for _, d := range des {
		p := d.Name()
		if dir != "." {
			p = path.Join(dir, d.Name())
		}
		item, keep, err := c.classify(ctx, p, d)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		if item.IsDir {
			dirs = append(dirs, item)
		} else {
			files = append(files, item)
		}
	}

	for _, item := range dirs {
		if err := c.add(item); err != nil {
			return err
		}
	}
	for _, item := range files {
		if err := c.add(item); err != nil {
			return err
		}
	}
	for _, item := range dirs {
		if err := c.walkGrouped(ctx, item.Path); err != nil {
			return err
		}
	}
	return nil
}

// classify resolves d into an Item. keep is false for skipped entries.
func (c *collector) classify(ctx context.Context, p string, d fs.DirEntry) (Item, bool, error) {
	if err := ctx.Err(); err != nil {
		return Item{}, false, err
	}
	for _, fn := range c.cfg.skip {
		if fn != nil && fn(p, d) {
			c.log().Debug("skipped entry", "path", p)
			return Item{}, false, nil
		}
	}

	dtype := d.Type()
	if dtype&fs.ModeSymlink != 0 {
		c.log().Debug("skipped symlink", "path", p)
		return Item{}, false, nil
	}
	if d.IsDir() {
		return Item{Path: p, IsDir: true}, true, nil
	}

	info, err := d.Info()
	if err != nil {
		return Item{}, false, err
	}
	if !info.Mode().IsRegular() {
		c.log().Debug("skipped non-regular file", "path", p, "mode", info.Mode().String())
		return Item{}, false, nil
	}
	return Item{Path: p, Size: info.Size()}, true, nil
}

func (c *collector) add(item Item) error {
	if c.max > 0 && len(c.items) >= c.max {
		return pkgtype.ErrTooManyEntries
	}
	c.items = append(c.items, item)
	if c.cfg.progress != nil {
		c.cfg.progress(pkgtype.ProgressEvent{
			Stage:       pkgtype.StageCollecting,
			Path:        item.Path,
			EntriesDone: len(c.items),
		})
	}
	return nil
}
