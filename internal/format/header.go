package format

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxVarStringLen bounds a length-prefixed metadata string.
const MaxVarStringLen = 4096

// ErrTableOffset is returned when a decoded table_offset does not match the
// length of the header it belongs to.
var ErrTableOffset = errors.New("format: table offset does not match header length")

// FixedHeaderSize is the length of every ProfileFixed header.
const FixedHeaderSize = MagicSize + NameLenMax + IDLenMax + VersionLenMax + 2*Uint32Size

// Header is the leading record of a package.
type Header struct {
	Kind    Kind
	Profile Profile

	Name    string
	ID      string
	Version string

	EntryCount uint32

	// Reserved is populated when decoding. It is always written as zero.
	Reserved uint32
}

// metadataField is one metadata string with its fixed-profile width.
type metadataField struct {
	value  string
	maxLen int
}

func (h *Header) metadata() [3]metadataField {
	return [3]metadataField{
		{h.Name, NameLenMax},
		{h.ID, IDLenMax},
		{h.Version, VersionLenMax},
	}
}

// AppendBinary appends the encoded header to dst.
//
// For ProfileVariable the trailing table_offset word is computed from the
// bytes actually appended, so it always equals the header length.
func (h Header) AppendBinary(dst []byte) ([]byte, error) {
	if !h.Profile.Valid() {
		return dst, fmt.Errorf("%w: %d", ErrUnknownProfile, h.Profile)
	}
	magic, err := h.Kind.Magic()
	if err != nil {
		return dst, err
	}

	start := len(dst)
	dst = append(dst, magic[:]...)
	for _, f := range h.metadata() {
		if h.Profile == ProfileFixed {
			dst = AppendFixedString(dst, f.value, f.maxLen)
		} else {
			dst = AppendVarString(dst, f.value)
		}
	}
	dst = AppendUint32(dst, h.EntryCount)
	dst = AppendUint32(dst, 0)

	if h.Profile.HasTableOffset() {
		size := len(dst) - start + Uint32Size
		if uint64(size) > math.MaxUint32 {
			return dst[:start], fmt.Errorf("format: header length %d overflows uint32", size)
		}
		dst = AppendUint32(dst, uint32(size))
	}
	return dst, nil
}

// MarshalBinary returns the encoded header.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.AppendBinary(make([]byte, 0, FixedHeaderSize))
}

// Size returns the encoded length of the header.
func (h Header) Size() (int, error) {
	b, err := h.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// countingReader tracks how many header bytes have been consumed.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// ReadHeader decodes a header of profile p from r.
//
// It returns the header and the offset of the entry table, which is the
// header length. For ProfileVariable the stored table_offset must agree.
func ReadHeader(r io.Reader, p Profile) (Header, uint32, error) {
	if !p.Valid() {
		return Header{}, 0, fmt.Errorf("%w: %d", ErrUnknownProfile, p)
	}
	cr := &countingReader{r: r}

	var magic [MagicSize]byte
	if _, err := io.ReadFull(cr, magic[:]); err != nil {
		return Header{}, 0, fmt.Errorf("read magic: %w", err)
	}
	kind, err := KindFromMagic(magic)
	if err != nil {
		return Header{}, 0, err
	}

	h := Header{Kind: kind, Profile: p}
	targets := [3]*string{&h.Name, &h.ID, &h.Version}
	widths := [3]int{NameLenMax, IDLenMax, VersionLenMax}
	for i, dst := range targets {
		var s string
		if p == ProfileFixed {
			s, err = ReadFixedString(cr, widths[i])
		} else {
			s, err = ReadVarString(cr, MaxVarStringLen)
		}
		if err != nil {
			return Header{}, 0, fmt.Errorf("read metadata field %d: %w", i, err)
		}
		*dst = s
	}

	if h.EntryCount, err = ReadUint32(cr); err != nil {
		return Header{}, 0, fmt.Errorf("read entry count: %w", err)
	}
	if h.Reserved, err = ReadUint32(cr); err != nil {
		return Header{}, 0, fmt.Errorf("read reserved: %w", err)
	}

	if p.HasTableOffset() {
		stored, err := ReadUint32(cr)
		if err != nil {
			return Header{}, 0, fmt.Errorf("read table offset: %w", err)
		}
		if int64(stored) != cr.n {
			return Header{}, 0, fmt.Errorf("%w: stored %d, header is %d bytes", ErrTableOffset, stored, cr.n)
		}
	}
	return h, uint32(cr.n), nil //nolint:gosec // bounded by MaxVarStringLen fields
}
