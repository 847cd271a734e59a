package eospkg

import (
	"github.com/meigma/eospkg/internal/collect"
	"github.com/meigma/eospkg/internal/format"
)

// --- Re-exports from internal/format ---

// Kind identifies the package type by its magic.
type Kind = format.Kind

// Profile selects the header revision.
type Profile = format.Profile

// Header is the leading record of a package.
type Header = format.Header

// Entry is one table entry: either a Dir or a File.
type Entry = format.Entry

// Dir is a directory entry. Directories carry no data.
type Dir = format.Dir

// File is a regular file entry whose bytes live at [Offset, Offset+Size).
type File = format.File

// Kind constants.
const (
	KindApplication = format.KindApplication
	KindWatchface   = format.KindWatchface
)

// Profile constants.
const (
	// ProfileFixed stores name, id and version as 256-byte NUL-padded fields.
	// The header is always FixedHeaderSize bytes and carries no table_offset.
	ProfileFixed = format.ProfileFixed

	// ProfileVariable stores metadata as length-prefixed strings followed by
	// a table_offset equal to the header length.
	ProfileVariable = format.ProfileVariable
)

// FixedHeaderSize is the header length of every ProfileFixed package.
const FixedHeaderSize = format.FixedHeaderSize

// ParseKind parses a kind name such as "app" or "watchface".
var ParseKind = format.ParseKind

// ParseProfile parses a profile name such as "fixed" or "variable".
var ParseProfile = format.ParseProfile

// --- Re-exports from internal/collect ---

// Order selects the traversal order, which is also the table order.
type Order = collect.Order

// ParseOrder parses an order name such as "lexical" or "grouped".
var ParseOrder = collect.ParseOrder

// SkipFunc returns true when a source path should be left out of a package.
type SkipFunc = collect.SkipFunc

// Order constants.
const (
	OrderLexical = collect.OrderLexical
	OrderGrouped = collect.OrderGrouped
)

// ChangeDetection controls how strictly source changes are detected while
// file bytes are copied.
type ChangeDetection uint8

const (
	// ChangeDetectionNone only rejects files that end before their planned size.
	ChangeDetectionNone ChangeDetection = iota

	// ChangeDetectionStrict also rejects files that grew or whose size, mtime
	// or permissions changed while they were copied.
	ChangeDetectionStrict
)

// Metadata is the identity written into a package header.
type Metadata struct {
	Name    string
	ID      string
	Version string
}
