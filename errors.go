package eospkg

import (
	"github.com/meigma/eospkg/internal/layout"
	"github.com/meigma/eospkg/internal/manifest"
	"github.com/meigma/eospkg/internal/pkgtype"
	"github.com/meigma/eospkg/internal/platform"
)

// Error kinds. Every error returned by Build, Write and Open wraps at most
// one of ErrConfig, ErrEmpty, ErrIO or ErrInvalidArchive, plus any more
// specific sentinel below.
var (
	// ErrConfig is returned for missing or invalid metadata, kind or profile.
	// It is always reported before any output is written.
	ErrConfig = pkgtype.ErrConfig

	// ErrEmpty is returned when the source tree has no entries.
	ErrEmpty = pkgtype.ErrEmpty

	// ErrIO is returned when a source cannot be read or the destination
	// cannot be written.
	ErrIO = pkgtype.ErrIO

	// ErrInvalidArchive is returned when a package fails structural validation.
	ErrInvalidArchive = pkgtype.ErrInvalidArchive
)

// Specific errors, wrapped together with one of the kinds above.
var (
	// ErrSizeOverflow is returned when a size or offset does not fit 32 bits.
	ErrSizeOverflow = pkgtype.ErrSizeOverflow

	// ErrTooManyEntries is returned when the source exceeds the entry limit.
	ErrTooManyEntries = pkgtype.ErrTooManyEntries

	// ErrSourceChanged is returned when a source file changed while it was read.
	ErrSourceChanged = pkgtype.ErrSourceChanged

	// ErrKindMismatch is returned when a package's magic differs from the
	// kind requested with OpenWithKind.
	ErrKindMismatch = pkgtype.ErrKindMismatch

	// ErrDigestMismatch is returned when a package does not match the digest
	// given to OpenWithDigest.
	ErrDigestMismatch = pkgtype.ErrDigestMismatch

	// ErrSymlink is returned when a source file was replaced by a symlink.
	ErrSymlink = platform.ErrSymlink

	// ErrDuplicatePath is returned when two entries share a path.
	ErrDuplicatePath = layout.ErrDuplicatePath

	// ErrMissingField is returned when required metadata is empty.
	ErrMissingField = manifest.ErrMissingField
)
