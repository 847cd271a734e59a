package eospkg

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/eospkg/internal/format"
	"github.com/meigma/eospkg/internal/testutil"
)

// craftPackage encodes a package from raw records and data without any of
// the builder's checks. Record offsets are relative to the data region.
func craftPackage(t *testing.T, records []format.Record, data []byte) []byte {
	t.Helper()

	hdr := format.Header{
		Kind:       format.KindApplication,
		Profile:    format.ProfileFixed,
		Name:       "crafted",
		ID:         "com.example.crafted",
		Version:    "0",
		EntryCount: uint32(len(records)),
	}
	out, err := hdr.MarshalBinary()
	require.NoError(t, err)

	dataStart := uint32(len(out))
	for _, r := range records {
		dataStart += uint32(format.RecordSize(r.Name))
	}
	for _, r := range records {
		if !r.IsDir {
			r.Offset += dataStart
		}
		out = format.AppendRecord(out, r)
	}
	return append(out, data...)
}

func openBytes(t *testing.T, raw []byte, opts ...OpenOption) (*Package, error) {
	t.Helper()
	src := testutil.NewMockByteSource(raw)
	return Open(src, src.Size(), opts...)
}

func buildBytes(t *testing.T, opts ...BuildOption) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, sourceTree(t, true), opts...)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestOpen_Crafted(t *testing.T) {
	t.Parallel()

	p, err := openBytes(t, craftPackage(t, []format.Record{
		{Name: "dir", IsDir: true},
		{Name: "dir/f", Offset: 0, Size: 4},
	}, []byte("data")))
	require.NoError(t, err)

	got, err := p.ReadFile("dir/f")
	require.NoError(t, err)
	assert.Equal(t, "data", string(got))
	assert.Equal(t, "crafted", p.Header().Name)
}

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []format.Record
		data    []byte
		wantErr error
	}{
		{
			name:    "traversal",
			records: []format.Record{{Name: "../evil", Size: 1}},
			data:    []byte("x"),
			wantErr: fs.ErrInvalid,
		},
		{
			name:    "absolute",
			records: []format.Record{{Name: "/etc/passwd", Size: 1}},
			data:    []byte("x"),
			wantErr: fs.ErrInvalid,
		},
		{
			name:    "range past end",
			records: []format.Record{{Name: "f", Size: 10}},
			data:    []byte("short"),
			wantErr: ErrInvalidArchive,
		},
		{
			name:    "dir with size",
			records: []format.Record{{Name: "d", IsDir: true, Size: 3}},
			wantErr: ErrInvalidArchive,
		},
		{
			name:    "duplicate",
			records: []format.Record{{Name: "f", Size: 1}, {Name: "f", Size: 1}},
			data:    []byte("xy"),
			wantErr: ErrDuplicatePath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := openBytes(t, craftPackage(t, tt.records, tt.data))
			require.ErrorIs(t, err, ErrInvalidArchive)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOpen_OffsetBeforeData(t *testing.T) {
	t.Parallel()

	raw := craftPackage(t, []format.Record{{Name: "f", Size: 1}}, []byte("x"))
	// Point the file into the header.
	offsetPos := FixedHeaderSize + 4 + 1 + 4
	raw[offsetPos] = 10
	raw[offsetPos+1] = 0
	raw[offsetPos+2] = 0
	raw[offsetPos+3] = 0

	_, err := openBytes(t, raw)
	require.ErrorIs(t, err, ErrInvalidArchive)
}

func TestOpen_Corrupt(t *testing.T) {
	t.Parallel()

	raw := buildBytes(t)

	t.Run("bad magic", func(t *testing.T) {
		t.Parallel()
		bad := bytes.Clone(raw)
		copy(bad, "NOPE")
		_, err := openBytes(t, bad)
		require.ErrorIs(t, err, ErrInvalidArchive)
		require.ErrorIs(t, err, format.ErrUnknownKind)
	})

	t.Run("truncated header", func(t *testing.T) {
		t.Parallel()
		_, err := openBytes(t, raw[:100])
		require.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("truncated table", func(t *testing.T) {
		t.Parallel()
		_, err := openBytes(t, raw[:FixedHeaderSize+10])
		require.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("truncated data", func(t *testing.T) {
		t.Parallel()
		_, err := openBytes(t, raw[:len(raw)-1])
		require.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("inflated count", func(t *testing.T) {
		t.Parallel()
		bad := bytes.Clone(raw)
		bad[FixedHeaderSize-8] = 0xff
		bad[FixedHeaderSize-7] = 0xff
		_, err := openBytes(t, bad)
		require.ErrorIs(t, err, ErrInvalidArchive)
	})
}

func TestOpen_VariableTableOffsetMismatch(t *testing.T) {
	t.Parallel()

	raw := buildBytes(t, BuildWithProfile(ProfileVariable))
	p, err := openBytes(t, raw, OpenWithProfile(ProfileVariable))
	require.NoError(t, err)

	bad := bytes.Clone(raw)
	bad[p.TableOffset()-4]++
	_, err = openBytes(t, bad, OpenWithProfile(ProfileVariable))
	require.ErrorIs(t, err, ErrInvalidArchive)
	require.ErrorIs(t, err, format.ErrTableOffset)
}

func TestOpen_Kind(t *testing.T) {
	t.Parallel()

	raw := buildBytes(t, BuildWithKind(KindWatchface))
	assert.Equal(t, "EWPK", string(raw[:4]))

	p, err := openBytes(t, raw)
	require.NoError(t, err)
	assert.Equal(t, KindWatchface, p.Header().Kind)

	_, err = openBytes(t, raw, OpenWithKind(KindWatchface))
	require.NoError(t, err)

	_, err = openBytes(t, raw, OpenWithKind(KindApplication))
	require.ErrorIs(t, err, ErrKindMismatch)
}

func TestOpen_Digest(t *testing.T) {
	t.Parallel()

	raw := buildBytes(t)

	_, err := openBytes(t, raw, OpenWithDigest(digest.FromBytes(raw)))
	require.NoError(t, err)

	_, err = openBytes(t, raw, OpenWithDigest(digest.FromString("other")))
	require.ErrorIs(t, err, ErrDigestMismatch)

	_, err = openBytes(t, raw, OpenWithDigest(digest.Digest("sha256:zz")))
	require.ErrorIs(t, err, ErrConfig)
}

func TestParseDigest(t *testing.T) {
	t.Parallel()

	want := digest.FromString("eospkg")

	got, err := ParseDigest(want.String())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = ParseDigest(strings.ToUpper(want.Encoded()))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	for _, in := range []string{"", "sha256:zz", "md5:abcd"} {
		_, err := ParseDigest(in)
		require.ErrorIs(t, err, ErrConfig, in)
	}
}

func TestOpen_TooManyEntries(t *testing.T) {
	t.Parallel()

	raw := buildBytes(t)
	_, err := openBytes(t, raw, OpenWithMaxEntries(2))
	require.ErrorIs(t, err, ErrTooManyEntries)
}

func TestPackage_FS(t *testing.T) {
	t.Parallel()

	p, err := openBytes(t, buildBytes(t))
	require.NoError(t, err)

	require.NoError(t, fstest.TestFS(p, "a.txt", "manifest.json", "sub", "sub/b.txt"))

	data, err := fs.ReadFile(p, "sub/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "xy", string(data))

	info, err := p.Stat("sub")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := p.ReadDir(".")
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"a.txt", "manifest.json", "sub"}, names)

	_, err = p.Open("missing")
	require.ErrorIs(t, err, fs.ErrNotExist)
	_, err = p.Open("../x")
	require.ErrorIs(t, err, fs.ErrInvalid)
	_, err = p.ReadFile("sub")
	require.Error(t, err)
	_, err = p.ReadDir("a.txt")
	require.ErrorIs(t, err, fs.ErrInvalid)
}

func TestPackage_ImplicitDirs(t *testing.T) {
	t.Parallel()

	p, err := openBytes(t, craftPackage(t, []format.Record{
		{Name: "x/y/z", Size: 2},
	}, []byte("ok")))
	require.NoError(t, err)

	info, err := p.Stat("x/y")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := p.ReadDir("x/y")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "z", entries[0].Name())

	info, err = p.Stat("x")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err = p.ReadDir(".")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x", entries[0].Name())
	assert.True(t, entries[0].IsDir())

	require.NoError(t, fstest.TestFS(p, "x/y/z"))
}

func TestOpen_FileWithChildren(t *testing.T) {
	t.Parallel()

	_, err := openBytes(t, craftPackage(t, []format.Record{
		{Name: "a", Size: 1},
		{Name: "a/b", Size: 1, Offset: 1},
	}, []byte("12")))
	require.ErrorIs(t, err, ErrInvalidArchive)
}

func TestPackage_Section(t *testing.T) {
	t.Parallel()

	p, err := openBytes(t, buildBytes(t))
	require.NoError(t, err)

	sr, err := p.Section("a.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(sr)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	_, err = p.Section("sub")
	require.Error(t, err)
	_, err = p.Section("nope")
	require.ErrorIs(t, err, fs.ErrNotExist)

	e, ok := p.Lookup("sub")
	require.True(t, ok)
	assert.Equal(t, Dir{Path: "sub"}, e)
}

func TestOpenFile(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out.pkg")
	res, err := Build(context.Background(), sourceTree(t, true), dest)
	require.NoError(t, err)

	pf, err := OpenFile(dest, OpenWithDigest(res.Digest))
	require.NoError(t, err)
	assert.Equal(t, 4, pf.Len())
	require.NoError(t, pf.Close())
	require.NoError(t, pf.Close())

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.pkg"))
	require.ErrorIs(t, err, ErrIO)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspect(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "out.pkg")
	res, err := Build(context.Background(), sourceTree(t, true), dest)
	require.NoError(t, err)

	r, err := Inspect(dest)
	require.NoError(t, err)
	assert.Equal(t, res.Digest, r.Digest())
	assert.Equal(t, res.Header, r.Header())
	assert.Equal(t, 1, r.DirCount())
	assert.Equal(t, 3, r.FileCount())
	assert.Equal(t, uint64(res.DataSize), r.DataSize())
	assert.Equal(t, int64(res.TotalSize), r.Size())
	assert.Equal(t, res.DataStart, r.DataStart())
}
