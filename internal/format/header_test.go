package format

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(p Profile) Header {
	return Header{
		Kind:       KindApplication,
		Profile:    p,
		Name:       "Clock",
		ID:         "com.example.clock",
		Version:    "1.0.2",
		EntryCount: 3,
	}
}

func TestHeader_FixedLayout(t *testing.T) {
	t.Parallel()

	b, err := testHeader(ProfileFixed).MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, FixedHeaderSize)
	assert.Equal(t, 780, FixedHeaderSize)

	assert.Equal(t, []byte("EAPK"), b[0:4])
	assert.Equal(t, "Clock", string(bytes.TrimRight(b[4:4+NameLenMax], "\x00")))
	idStart := 4 + NameLenMax
	assert.Equal(t, "com.example.clock", string(bytes.TrimRight(b[idStart:idStart+IDLenMax], "\x00")))
	verStart := idStart + IDLenMax
	assert.Equal(t, "1.0.2", string(bytes.TrimRight(b[verStart:verStart+VersionLenMax], "\x00")))
	countStart := verStart + VersionLenMax
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(b[countStart:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[countStart+4:]))
}

func TestHeader_VariableTableOffset(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hdr  Header
	}{
		{"typical", testHeader(ProfileVariable)},
		{"empty strings", Header{Kind: KindWatchface, Profile: ProfileVariable}},
		{"long strings", Header{
			Kind:    KindWatchface,
			Profile: ProfileVariable,
			Name:    strings.Repeat("n", 600),
			ID:      strings.Repeat("i", 300),
			Version: "2.0",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := tt.hdr.MarshalBinary()
			require.NoError(t, err)
			want := MagicSize + VarStringSize(tt.hdr.Name) + VarStringSize(tt.hdr.ID) +
				VarStringSize(tt.hdr.Version) + 3*Uint32Size
			require.Len(t, b, want)

			tableOffset := binary.LittleEndian.Uint32(b[len(b)-4:])
			assert.Equal(t, uint32(len(b)), tableOffset)

			size, err := tt.hdr.Size()
			require.NoError(t, err)
			assert.Equal(t, len(b), size)
		})
	}
}

func TestHeader_AppendBinaryPrefix(t *testing.T) {
	t.Parallel()

	prefix := []byte("prefix")
	b, err := testHeader(ProfileVariable).AppendBinary(prefix)
	require.NoError(t, err)
	tableOffset := binary.LittleEndian.Uint32(b[len(b)-4:])
	assert.Equal(t, uint32(len(b)-len(prefix)), tableOffset, "table offset counts only header bytes")
}

func TestHeader_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Header{Kind: KindUnknown, Profile: ProfileFixed}.MarshalBinary()
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = Header{Kind: KindApplication}.MarshalBinary()
	require.ErrorIs(t, err, ErrUnknownProfile)
}

func TestReadHeader_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, p := range []Profile{ProfileFixed, ProfileVariable} {
		t.Run(p.String(), func(t *testing.T) {
			t.Parallel()

			in := testHeader(p)
			b, err := in.MarshalBinary()
			require.NoError(t, err)

			out, tableOffset, err := ReadHeader(bytes.NewReader(b), p)
			require.NoError(t, err)
			assert.Equal(t, in, out)
			assert.Equal(t, uint32(len(b)), tableOffset)
		})
	}
}

func TestReadHeader_TruncatesLongFixedNames(t *testing.T) {
	t.Parallel()

	in := testHeader(ProfileFixed)
	in.Name = strings.Repeat("x", 400)
	b, err := in.MarshalBinary()
	require.NoError(t, err)

	out, _, err := ReadHeader(bytes.NewReader(b), ProfileFixed)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", NameLenMax-1), out.Name)
}

func TestReadHeader_BadTableOffset(t *testing.T) {
	t.Parallel()

	b, err := testHeader(ProfileVariable).MarshalBinary()
	require.NoError(t, err)
	binary.LittleEndian.PutUint32(b[len(b)-4:], 780)

	_, _, err = ReadHeader(bytes.NewReader(b), ProfileVariable)
	require.ErrorIs(t, err, ErrTableOffset)
}

func TestReadHeader_BadMagic(t *testing.T) {
	t.Parallel()

	b, err := testHeader(ProfileFixed).MarshalBinary()
	require.NoError(t, err)
	copy(b, "ZZZZ")

	_, _, err = ReadHeader(bytes.NewReader(b), ProfileFixed)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestReadHeader_Short(t *testing.T) {
	t.Parallel()

	b, err := testHeader(ProfileFixed).MarshalBinary()
	require.NoError(t, err)

	_, _, err = ReadHeader(bytes.NewReader(b[:100]), ProfileFixed)
	require.Error(t, err)
}
