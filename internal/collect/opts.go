package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/meigma/eospkg/internal/pkgtype"
)

// DefaultMaxEntries is the default limit used when no WithMaxEntries option is set.
const DefaultMaxEntries = 200_000

// Order selects the traversal order, which is also the table order.
type Order uint8

const (
	// OrderLexical is a depth-first pre-order walk with siblings sorted by
	// name, as produced by fs.WalkDir.
	OrderLexical Order = iota

	// OrderGrouped lists, for each directory, its subdirectories and then its
	// files before descending into the subdirectories in name order.
	OrderGrouped
)

// String returns the name of the order.
func (o Order) String() string {
	switch o {
	case OrderLexical:
		return "lexical"
	case OrderGrouped:
		return "grouped"
	default:
		return "unknown"
	}
}

// ErrUnknownOrder is returned by ParseOrder for an unrecognized name.
var ErrUnknownOrder = errors.New("collect: unknown order")

// ParseOrder parses an order name as accepted on the command line.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lexical":
		return OrderLexical, nil
	case "grouped":
		return OrderGrouped, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrder, s)
	}
}

// SkipFunc returns true when path should be left out of the package.
// Returning true for a directory prunes its whole subtree.
type SkipFunc func(path string, d fs.DirEntry) bool

type config struct {
	order      Order
	skip       []SkipFunc
	maxEntries int
	logger     *slog.Logger
	progress   pkgtype.ProgressFunc
}

// Option configures Collect.
type Option func(*config)

// WithOrder sets the traversal order. The default is OrderLexical.
func WithOrder(o Order) Option {
	return func(c *config) {
		c.order = o
	}
}

// WithSkip adds predicates that exclude paths from the package.
func WithSkip(fns ...SkipFunc) Option {
	return func(c *config) {
		c.skip = append(c.skip, fns...)
	}
}

// WithMaxEntries limits the number of entries collected.
// Zero uses DefaultMaxEntries. Negative means no limit.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		c.maxEntries = n
	}
}

// WithLogger sets the logger for skipped entries.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithProgress reports each collected entry.
func WithProgress(fn pkgtype.ProgressFunc) Option {
	return func(c *config) {
		c.progress = fn
	}
}
