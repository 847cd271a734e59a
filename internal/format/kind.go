package format

import (
	"errors"
	"fmt"
	"strings"
)

// MagicSize is the length of the magic tag at the start of every package.
const MagicSize = 4

// ErrUnknownKind is returned for an unrecognised kind name or magic tag.
var ErrUnknownKind = errors.New("format: unknown package kind")

// Kind identifies the type of package, selected by its magic tag.
// The numeric values match the device's script package types.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindApplication
	KindWatchface
)

var (
	magicApplication = [MagicSize]byte{'E', 'A', 'P', 'K'}
	magicWatchface   = [MagicSize]byte{'E', 'W', 'P', 'K'}
)

// Magic returns the 4-byte tag written at offset 0.
func (k Kind) Magic() ([MagicSize]byte, error) {
	switch k {
	case KindApplication:
		return magicApplication, nil
	case KindWatchface:
		return magicWatchface, nil
	default:
		return [MagicSize]byte{}, fmt.Errorf("%w: %d", ErrUnknownKind, k)
	}
}

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "app"
	case KindWatchface:
		return "watchface"
	default:
		return "unknown"
	}
}

// KindFromMagic maps a magic tag to its kind.
func KindFromMagic(magic [MagicSize]byte) (Kind, error) {
	switch magic {
	case magicApplication:
		return KindApplication, nil
	case magicWatchface:
		return KindWatchface, nil
	default:
		return KindUnknown, fmt.Errorf("%w: magic %q", ErrUnknownKind, magic[:])
	}
}

// ParseKind parses a kind name as accepted on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "app", "application", "eapk":
		return KindApplication, nil
	case "watchface", "ewpk":
		return KindWatchface, nil
	default:
		return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
