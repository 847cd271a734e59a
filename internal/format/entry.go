package format

import (
	"fmt"
	"io"
)

// MaxNameLen is the longest entry name a package may carry.
const MaxNameLen = 4096

// recordWords is the is_dir, offset and size words following the name.
const recordWords = 3 * Uint32Size

// Entry is one member of a package: either a Dir or a File.
type Entry interface {
	// EntryPath returns the slash-separated path relative to the package root.
	EntryPath() string
	isEntry()
}

// Dir marks a directory. Directories carry no data.
type Dir struct {
	Path string
}

// File is a regular file whose bytes live at [Offset, Offset+Size) in the package.
type File struct {
	Path   string
	Size   uint32
	Offset uint32
}

func (d Dir) EntryPath() string  { return d.Path }
func (f File) EntryPath() string { return f.Path }
func (Dir) isEntry()             {}
func (File) isEntry()            {}

// Record is the flattened wire form of an Entry.
type Record struct {
	Name   string
	IsDir  bool
	Offset uint32
	Size   uint32
}

// RecordOf flattens e. Directories always encode offset 0 and size 0.
func RecordOf(e Entry) Record {
	switch v := e.(type) {
	case Dir:
		return Record{Name: v.Path, IsDir: true}
	case File:
		return Record{Name: v.Path, Offset: v.Offset, Size: v.Size}
	default:
		panic(fmt.Sprintf("format: unexpected entry type %T", e))
	}
}

// Entry converts the record back into its tagged form.
func (r Record) Entry() Entry {
	if r.IsDir {
		return Dir{Path: r.Name}
	}
	return File{Path: r.Name, Size: r.Size, Offset: r.Offset}
}

// RecordSize returns the encoded size of a table record for name.
func RecordSize(name string) int {
	return VarStringSize(name) + recordWords
}

// AppendRecord appends the encoded record to dst.
func AppendRecord(dst []byte, r Record) []byte {
	var isDir uint32
	if r.IsDir {
		isDir = 1
	}
	dst = AppendVarString(dst, r.Name)
	dst = AppendUint32(dst, isDir)
	dst = AppendUint32(dst, r.Offset)
	return AppendUint32(dst, r.Size)
}

// ReadRecord decodes one table record whose name is at most nameLimit bytes.
// Any non-zero is_dir word marks a directory.
func ReadRecord(rd io.Reader, nameLimit uint32) (Record, error) {
	name, err := ReadVarString(rd, nameLimit)
	if err != nil {
		return Record{}, fmt.Errorf("read entry name: %w", err)
	}
	var fields [3]uint32
	for i := range fields {
		if fields[i], err = ReadUint32(rd); err != nil {
			return Record{}, fmt.Errorf("read entry %q: %w", name, err)
		}
	}
	return Record{
		Name:   name,
		IsDir:  fields[0] != 0,
		Offset: fields[1],
		Size:   fields[2],
	}, nil
}
