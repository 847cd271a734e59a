package layout

import (
	"fmt"
	"io/fs"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/eospkg/internal/collect"
	"github.com/meigma/eospkg/internal/format"
	"github.com/meigma/eospkg/internal/pkgtype"
)

func testHeader(p format.Profile) format.Header {
	return format.Header{
		Kind:    format.KindApplication,
		Profile: p,
		Name:    "demo",
		ID:      "com.example.demo",
		Version: "1.0.0",
	}
}

func TestPlan_ThreeEntries(t *testing.T) {
	t.Parallel()

	items := []collect.Item{
		{Path: "a.txt", Size: 3},
		{Path: "sub", IsDir: true},
		{Path: "sub/b.txt", Size: 2},
	}

	for _, p := range []format.Profile{format.ProfileFixed, format.ProfileVariable} {
		t.Run(p.String(), func(t *testing.T) {
			t.Parallel()

			l, err := Plan(testHeader(p), items)
			require.NoError(t, err)

			hdr, err := l.Header.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, uint32(len(hdr)), l.HeaderSize)
			if p == format.ProfileFixed {
				assert.Equal(t, uint32(format.FixedHeaderSize), l.HeaderSize)
			}

			wantTable := uint32((16 + 5) + (16 + 3) + (16 + 9))
			assert.Equal(t, wantTable, l.TableSize)
			assert.Equal(t, l.HeaderSize+wantTable, l.DataStart)
			assert.Equal(t, uint32(3), l.Header.EntryCount)

			require.Len(t, l.Entries, 3)
			assert.Equal(t, format.File{Path: "a.txt", Size: 3, Offset: l.DataStart}, l.Entries[0])
			assert.Equal(t, format.Dir{Path: "sub"}, l.Entries[1])
			assert.Equal(t, format.File{Path: "sub/b.txt", Size: 2, Offset: l.DataStart + 3}, l.Entries[2])

			assert.Equal(t, uint32(5), l.DataSize)
			assert.Equal(t, l.HeaderSize+l.TableSize+5, l.TotalSize)
		})
	}
}

func TestPlan_OffsetsContiguous(t *testing.T) {
	t.Parallel()

	var items []collect.Item
	for i := range 20 {
		if i%4 == 0 {
			items = append(items, collect.Item{Path: fmt.Sprintf("d%02d", i), IsDir: true})
			continue
		}
		items = append(items, collect.Item{Path: fmt.Sprintf("f%02d", i), Size: int64(i * 7)})
	}

	l, err := Plan(testHeader(format.ProfileVariable), items)
	require.NoError(t, err)

	next := l.DataStart
	for _, f := range l.Files() {
		assert.Equal(t, next, f.Offset, f.Path)
		next += f.Size
	}
	assert.Equal(t, l.TotalSize, next)
}

func TestPlan_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		items   []collect.Item
		wantErr error
	}{
		{
			name:    "empty",
			items:   nil,
			wantErr: pkgtype.ErrEmpty,
		},
		{
			name:    "duplicate",
			items:   []collect.Item{{Path: "a", Size: 1}, {Path: "a", Size: 1}},
			wantErr: ErrDuplicatePath,
		},
		{
			name:    "file too large",
			items:   []collect.Item{{Path: "big", Size: math.MaxUint32 + 1}},
			wantErr: pkgtype.ErrSizeOverflow,
		},
		{
			name: "total overflows",
			items: []collect.Item{
				{Path: "a", Size: math.MaxUint32 - 10},
				{Path: "b", Size: 100},
			},
			wantErr: pkgtype.ErrSizeOverflow,
		},
		{
			name:    "name too long",
			items:   []collect.Item{{Path: strings.Repeat("n", format.MaxNameLen+1), Size: 1}},
			wantErr: format.ErrStringTooLong,
		},
		{
			name:    "invalid path",
			items:   []collect.Item{{Path: "../escape", Size: 1}},
			wantErr: fs.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			l, err := Plan(testHeader(format.ProfileFixed), tt.items)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, l)
		})
	}
}

func TestLayout_AppendTable(t *testing.T) {
	t.Parallel()

	l, err := Plan(testHeader(format.ProfileFixed), []collect.Item{
		{Path: "a", Size: 1},
		{Path: "d", IsDir: true},
	})
	require.NoError(t, err)

	table := l.AppendTable(nil)
	require.Len(t, table, int(l.TableSize))

	want := format.AppendRecord(nil, format.Record{Name: "a", Size: 1, Offset: l.DataStart})
	want = format.AppendRecord(want, format.Record{Name: "d", IsDir: true})
	assert.Equal(t, want, table)
}

func TestPlan_NameLength(t *testing.T) {
	t.Parallel()

	hdr := format.Header{Kind: format.KindApplication, Profile: format.ProfileFixed}

	_, err := Plan(hdr, []collect.Item{{Path: strings.Repeat("n", format.MaxNameLen), Size: 1}})
	require.NoError(t, err)

	_, err = Plan(hdr, []collect.Item{{Path: strings.Repeat("n", format.MaxNameLen+1), Size: 1}})
	require.ErrorIs(t, err, pkgtype.ErrConfig)
}
