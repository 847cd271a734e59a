package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Uint32Size is the encoded size of every integer field.
const Uint32Size = 4

// ErrStringTooLong is returned when a length-prefixed string exceeds the
// caller's limit while decoding.
var ErrStringTooLong = errors.New("format: string too long")

// AppendUint32 appends v to dst in little-endian order.
func AppendUint32(dst []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(dst, v)
}

// AppendFixedString appends s as a NUL-padded field of exactly maxLen bytes.
//
// At most maxLen-1 bytes of s are kept, so the field always ends in at least
// one NUL byte. Truncation is byte-wise and may split a multi-byte rune; the
// device reader treats the field as a C string.
func AppendFixedString(dst []byte, s string, maxLen int) []byte {
	if maxLen <= 0 {
		return dst
	}
	keep := len(s)
	if keep > maxLen-1 {
		keep = maxLen - 1
	}
	dst = append(dst, s[:keep]...)
	for range maxLen - keep {
		dst = append(dst, 0)
	}
	return dst
}

// AppendVarString appends s as a u32 length prefix followed by its bytes.
// The caller guarantees len(s) fits in a uint32.
func AppendVarString(dst []byte, s string) []byte {
	dst = AppendUint32(dst, uint32(len(s))) //nolint:gosec // length bounded by the caller
	return append(dst, s...)
}

// VarStringSize returns the encoded size of s as a length-prefixed string.
func VarStringSize(s string) int {
	return Uint32Size + len(s)
}

// ReadUint32 reads one little-endian uint32 from r.
func ReadUint32(r io.Reader) (uint32, error) {
	var buf [Uint32Size]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadFixedString reads a maxLen-byte field and returns the text before the
// first NUL byte.
func ReadFixedString(r io.Reader, maxLen int) (string, error) {
	buf := make([]byte, maxLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}

// ReadVarString reads a length-prefixed string of at most limit bytes.
func ReadVarString(r io.Reader, limit uint32) (string, error) {
	n, err := ReadUint32(r)
	if err != nil {
		return "", err
	}
	if n > limit {
		return "", fmt.Errorf("%w: %d > %d", ErrStringTooLong, n, limit)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
