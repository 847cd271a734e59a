// Package pkgtype holds types shared by the eospkg packages: sentinel errors
// and progress reporting.
package pkgtype

import "errors"

// Sentinel errors for package operations.
var (
	// ErrConfig is returned for missing or invalid build metadata.
	ErrConfig = errors.New("eospkg: invalid configuration")

	// ErrEmpty is returned when the source tree has nothing to archive.
	ErrEmpty = errors.New("eospkg: no entries to archive")

	// ErrIO is returned when a source or destination cannot be read or written.
	ErrIO = errors.New("eospkg: i/o failure")

	// ErrSizeOverflow is returned when an offset or size exceeds 32 bits.
	ErrSizeOverflow = errors.New("eospkg: size overflow")

	// ErrTooManyEntries is returned when the entry count exceeds the configured limit.
	ErrTooManyEntries = errors.New("eospkg: too many entries")

	// ErrSourceChanged is returned when a file's size differs from the size
	// recorded in the entry table while its bytes are being copied.
	ErrSourceChanged = errors.New("eospkg: source changed during build")

	// ErrInvalidArchive is returned when a package fails structural validation.
	ErrInvalidArchive = errors.New("eospkg: invalid package")

	// ErrKindMismatch is returned when a package's magic does not match the expected kind.
	ErrKindMismatch = errors.New("eospkg: package kind mismatch")

	// ErrDigestMismatch is returned when a package does not match its expected digest.
	ErrDigestMismatch = errors.New("eospkg: digest mismatch")
)
