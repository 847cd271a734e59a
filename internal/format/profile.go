package format

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned for an unrecognised header profile.
var ErrUnknownProfile = errors.New("format: unknown header profile")

// Metadata field widths used by the fixed profile. The last byte of each
// field is always NUL, leaving 255 usable bytes.
const (
	NameLenMax    = 256
	IDLenMax      = 256
	VersionLenMax = 256
)

// Profile selects one revision of the header schema.
//
// Both revisions share the magic, entry count, reserved word, entry table and
// data region. They differ in how metadata strings are stored and in whether
// the header records its own length.
type Profile uint8

const (
	// ProfileFixed stores name, id and version as NUL-padded 256-byte fields.
	// The header is always 780 bytes and carries no table offset.
	ProfileFixed Profile = iota + 1

	// ProfileVariable stores metadata as length-prefixed strings and appends
	// a table_offset word equal to the header length.
	ProfileVariable
)

// String returns the profile name.
func (p Profile) String() string {
	switch p {
	case ProfileFixed:
		return "fixed"
	case ProfileVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Valid reports whether p is a known profile.
func (p Profile) Valid() bool {
	return p == ProfileFixed || p == ProfileVariable
}

// HasTableOffset reports whether headers of this profile end in a table_offset word.
func (p Profile) HasTableOffset() bool {
	return p == ProfileVariable
}

// ParseProfile parses a profile name.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "v1":
		return ProfileFixed, nil
	case "variable", "v2":
		return ProfileVariable, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownProfile, s)
	}
}
