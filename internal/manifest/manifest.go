// Package manifest reads the manifest.json that describes an application or
// watchface.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the conventional manifest name at the root of a source tree.
const FileName = "manifest.json"

// maxManifestSize bounds how much of a manifest is read.
const maxManifestSize = 1 << 20

var (
	// ErrMissingField is returned by Validate when a required field is empty.
	ErrMissingField = errors.New("manifest: missing required field")

	// ErrInvalid is returned when the manifest cannot be decoded.
	ErrInvalid = errors.New("manifest: invalid")
)

// Manifest is the package description shipped with a source tree.
type Manifest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Version     string `json:"version"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
}

// Load reads and decodes the manifest called name from fsys.
// The manifest is not validated.
func Load(fsys fs.FS, name string) (*Manifest, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxManifestSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrInvalid, name, info.Size())
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		return nil, err
	}
	return Parse(buf.Bytes())
}

// LoadFile reads the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	return Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

// Parse decodes a manifest from data.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &m, nil
}

// Validate reports the first required field that is empty.
func (m *Manifest) Validate() error {
	for _, f := range []struct {
		name, value string
	}{
		{"id", m.ID},
		{"name", m.Name},
		{"version", m.Version},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// Merge returns a copy of m with every non-empty field of o applied on top.
func (m Manifest) Merge(o Manifest) Manifest {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&m.ID, o.ID)
	set(&m.Name, o.Name)
	set(&m.Version, o.Version)
	set(&m.Author, o.Author)
	set(&m.Description, o.Description)
	return m
}
